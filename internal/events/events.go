// Package events publishes attendance lifecycle notifications to the
// message bus so downstream consumers (dashboards, audit sinks) can
// react without polling the database.
package events

import (
	"context"

	"github.com/clanhall/evebot/internal/model"
)

// TopicPrefix namespaces every subject the bot publishes; subscribing
// to "evebot.>" tails the whole bus.
const TopicPrefix = "evebot."

// Event topic constants
const (
	TopicEventStarted  = "evebot.event.started"
	TopicEventFinished = "evebot.event.finished"
	TopicEventCanceled = "evebot.event.canceled"
	TopicEventDeleted  = "evebot.event.deleted"
	TopicEventFlag     = "evebot.event.flag"

	TopicAttendanceRecorded = "evebot.attendance.recorded"
	TopicAttendanceRemoved  = "evebot.attendance.removed"
)

// Event types

type EventStarted struct {
	CorrelationID string       `json:"correlation_id"`
	Event         *model.Event `json:"event"`
}

type EventFinished struct {
	CorrelationID string       `json:"correlation_id"`
	Event         *model.Event `json:"event"`
	// Attendees is the number of rewarded ledger rows at finish time.
	Attendees int `json:"attendees"`
}

type EventCanceled struct {
	CorrelationID string       `json:"correlation_id"`
	Event         *model.Event `json:"event"`
}

type EventDeleted struct {
	CorrelationID string `json:"correlation_id"`
	EventID       int64  `json:"event_id"`
}

type EventFlag struct {
	CorrelationID string          `json:"correlation_id"`
	EventID       int64           `json:"event_id"`
	Flag          model.EventFlag `json:"flag"`
	On            bool            `json:"on"`
}

type AttendanceRecorded struct {
	CorrelationID string                 `json:"correlation_id"`
	Attendance    *model.EventAttendance `json:"attendance"`
}

type AttendanceRemoved struct {
	CorrelationID string `json:"correlation_id"`
	EventID       int64  `json:"event_id"`
	MemberID      int64  `json:"member_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
