package model

import "time"

// EventModerator registers a guild member as authorized to administer
// events: toggle flags, edit the ledger, finish and cancel.
type EventModerator struct {
	ID        int64     `json:"id"`
	GuildID   int64     `json:"guild_id"`
	RoleID    int64     `json:"role_id,omitempty"`
	ChannelID int64     `json:"channel_id,omitempty"`
	MemberID  int64     `json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventChannel registers a text channel as hosting events; event
// commands outside registered channels are rejected.
type EventChannel struct {
	ID        int64     `json:"id"`
	GuildID   int64     `json:"guild_id"`
	RoleID    int64     `json:"role_id,omitempty"`
	ChannelID int64     `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
