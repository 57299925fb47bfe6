package model

import "time"

// EventFilter narrows event listings. Soft-deleted events are excluded
// unless IncludeDeleted is set.
type EventFilter struct {
	GuildID        int64
	Status         []EventStatus
	Type           []EventType
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// StatsFilter selects the finished-event attendance rows feeding a
// statistics export. Exactly one of the range styles is normally set;
// set fields combine with AND.
type StatsFilter struct {
	From     *time.Time
	To       *time.Time
	EventMin int64
	EventMax int64
	EventIDs []int64
	MemberID int64
}

// AttendanceRow is one finished-event attendance record joined with the
// event fields statistics aggregation needs.
type AttendanceRow struct {
	MemberID          int64
	MemberDisplayName string
	EventID           int64
	EventType         EventType
	Quantity          int
	Reward            int
}
