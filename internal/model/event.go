package model

import (
	"time"
)

// EventType classifies the in-game activity an event tracks.
type EventType string

const (
	TypeChain    EventType = "CHAIN"
	TypeOnce     EventType = "ONCE"
	TypeAwakened EventType = "AWAKENED"
	TypeToi      EventType = "TOI"
	TypeVeora    EventType = "VEORA"
	TypeSiege    EventType = "SIEGE"
	TypeCluster  EventType = "CLUSTER"
	TypeClan     EventType = "CLAN"
	TypeAlliance EventType = "ALLIANCE"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks whether the event type is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case TypeChain, TypeOnce, TypeAwakened, TypeToi, TypeVeora,
		TypeSiege, TypeCluster, TypeClan, TypeAlliance:
		return true
	}
	return false
}

// CapacityUnit is the unit the capacity and quantity of an event are
// measured in: minutes spent, bosses killed, or visits made.
type CapacityUnit string

const (
	UnitTime  CapacityUnit = "TIME"
	UnitThing CapacityUnit = "THING"
	UnitVisit CapacityUnit = "VISIT"
)

// String returns the string representation of the unit.
func (u CapacityUnit) String() string {
	return string(u)
}

// IsValid checks whether the unit is a known value.
func (u CapacityUnit) IsValid() bool {
	switch u {
	case UnitTime, UnitThing, UnitVisit:
		return true
	}
	return false
}

// EventStatus represents the lifecycle state of an event.
type EventStatus string

const (
	StatusPending  EventStatus = "PENDING"
	StatusStarted  EventStatus = "STARTED"
	StatusFinished EventStatus = "FINISHED"
	StatusCanceled EventStatus = "CANCELED"
	StatusDeleted  EventStatus = "DELETED"
)

// String returns the string representation of the status.
func (s EventStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusStarted, StatusFinished, StatusCanceled, StatusDeleted:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
// Terminal events reject attendance and flag mutations.
func (s EventStatus) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusCanceled, StatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusStarted:
		return s == StatusPending
	case StatusFinished, StatusCanceled:
		return s == StatusStarted
	case StatusDeleted:
		return true
	}
	return false
}

// EventFlag names a moderator-toggleable event modifier.
type EventFlag string

const (
	FlagMilitary  EventFlag = "MILITARY"
	FlagOvernight EventFlag = "OVERNIGHT"
)

// String returns the string representation of the flag.
func (f EventFlag) String() string {
	return string(f)
}

// IsValid checks whether the flag is a known value.
func (f EventFlag) IsValid() bool {
	return f == FlagMilitary || f == FlagOvernight
}

// Event is one attendance-tracked activity occurrence. Economic
// parameters are snapshotted from the template at creation time; later
// template edits never change an existing event's reward.
type Event struct {
	ID        int64 `json:"id"`
	GuildID   int64 `json:"guild_id"`
	ChannelID int64 `json:"channel_id"`
	// MessageID is the chat message serving as the event's UI surface.
	// Zero until the event is first posted.
	MessageID int64 `json:"message_id,omitempty"`

	MemberID          int64  `json:"member_id"`
	MemberName        string `json:"member_name,omitempty"`
	MemberDisplayName string `json:"member_display_name,omitempty"`

	Type      EventType    `json:"type"`
	Unit      CapacityUnit `json:"unit"`
	Capacity  int          `json:"capacity"`
	Cost      int          `json:"cost"`
	Penalty   int          `json:"penalty"`
	Military  int          `json:"military"`
	Overnight int          `json:"overnight"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Quantity is the realized participation amount, filled at finish
	// time. Zero means "not yet known" while the event is running.
	Quantity int         `json:"quantity"`
	Status   EventStatus `json:"status"`

	IsMilitary  bool `json:"is_military"`
	IsOvernight bool `json:"is_overnight"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Flag returns the value of the named modifier flag.
func (e *Event) Flag(f EventFlag) bool {
	switch f {
	case FlagMilitary:
		return e.IsMilitary
	case FlagOvernight:
		return e.IsOvernight
	}
	return false
}

// SetFlag sets the named modifier flag.
func (e *Event) SetFlag(f EventFlag, on bool) {
	switch f {
	case FlagMilitary:
		e.IsMilitary = on
	case FlagOvernight:
		e.IsOvernight = on
	}
}
