package service

import "errors"

var (
	// ErrNotFound indicates the requested event, template, or registry
	// row does not exist (or is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the acting member is neither the
	// organizer, a registered moderator, nor a bot owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState indicates the requested lifecycle transition or
	// mutation is not legal for the event's current status.
	ErrInvalidState = errors.New("invalid event state")

	// ErrQuantityRequired indicates finishing needs a realized quantity
	// and neither the call nor the event's default provides one.
	ErrQuantityRequired = errors.New("quantity required")
)
