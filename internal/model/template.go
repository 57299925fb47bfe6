package model

import "time"

// EventTemplate is a reusable blueprint of an event's economic
// parameters. Templates are created and deleted by administrators and
// never mutated in place; events snapshot their fields at start time.
type EventTemplate struct {
	ID int64 `json:"id"`

	Type      EventType    `json:"type"`
	Unit      CapacityUnit `json:"unit"`
	Capacity  int          `json:"capacity"`
	Cost      int          `json:"cost"`
	Penalty   int          `json:"penalty"`
	Military  int          `json:"military"`
	Overnight int          `json:"overnight"`

	// Quantity is the default realized amount for the event. Zero means
	// the organizer must resolve it when finishing.
	Quantity int `json:"quantity"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
