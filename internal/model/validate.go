package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// percentFields validates that a 0-100 percentage field is in range.
func percentField(ve *ValidationError, field string, value int) {
	if value < 0 || value > 100 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be between 0 and 100, got %d", value),
		})
	}
}

// ValidateTemplate checks an EventTemplate for constraint violations.
// Capacity must be positive here so reward computation never divides by
// zero later. Returns a *ValidationError if any rules fail.
func ValidateTemplate(t *EventTemplate) error {
	var ve ValidationError

	title := strings.TrimSpace(t.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 64 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 64 characters or fewer"})
	}

	if !t.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", t.Type),
		})
	}
	if !t.Unit.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "unit",
			Message: fmt.Sprintf("invalid value %q", t.Unit),
		})
	}

	if t.Capacity <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "capacity",
			Message: fmt.Sprintf("must be positive, got %d", t.Capacity),
		})
	}
	if t.Cost < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "cost",
			Message: fmt.Sprintf("must not be negative, got %d", t.Cost),
		})
	}
	if t.Quantity < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("must not be negative, got %d", t.Quantity),
		})
	}

	percentField(&ve, "penalty", t.Penalty)
	percentField(&ve, "military", t.Military)
	percentField(&ve, "overnight", t.Overnight)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateEvent checks an Event for constraint violations.
func ValidateEvent(e *Event) error {
	var ve ValidationError

	if strings.TrimSpace(e.Title) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	}
	if !e.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", e.Type),
		})
	}
	if !e.Unit.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "unit",
			Message: fmt.Sprintf("invalid value %q", e.Unit),
		})
	}
	if !e.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", e.Status),
		})
	}
	if e.Capacity <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "capacity",
			Message: fmt.Sprintf("must be positive, got %d", e.Capacity),
		})
	}
	if e.Quantity < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("must not be negative, got %d", e.Quantity),
		})
	}

	// A finished event always carries a resolved quantity.
	if e.Status == StatusFinished && e.Quantity == 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "quantity",
			Message: "must be resolved before the event is finished",
		})
	}

	percentField(&ve, "penalty", e.Penalty)
	percentField(&ve, "military", e.Military)
	percentField(&ve, "overnight", e.Overnight)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
