package model

import "time"

// AttendanceType is a member's attendance classification for one event.
type AttendanceType string

const (
	AttendanceFull    AttendanceType = "FULL"
	AttendancePartial AttendanceType = "PARTIAL"
	AttendanceAbsent  AttendanceType = "ABSENT"
)

// String returns the string representation of the attendance type.
func (t AttendanceType) String() string {
	return string(t)
}

// IsValid checks whether the attendance type is a known value.
func (t AttendanceType) IsValid() bool {
	switch t {
	case AttendanceFull, AttendancePartial, AttendanceAbsent:
		return true
	}
	return false
}

// EventAttendance is the durable participation and reward row for one
// (event, member) pair. The pair is unique; member names are denormalized
// snapshots taken at registration time.
type EventAttendance struct {
	ID      int64 `json:"id"`
	EventID int64 `json:"event_id"`

	MemberID          int64  `json:"member_id"`
	MemberName        string `json:"member_name,omitempty"`
	MemberDisplayName string `json:"member_display_name,omitempty"`

	Type AttendanceType `json:"type"`
	// Reward is the computed payable amount, zero until computed.
	Reward int `json:"reward"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member identifies a guild member acting on or attending an event,
// with name snapshots for denormalized storage.
type Member struct {
	ID          int64
	Name        string
	DisplayName string
}
