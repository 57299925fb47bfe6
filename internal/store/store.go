package store

import (
	"context"

	"github.com/clanhall/evebot/internal/model"
)

// Store defines the persistence interface for events and their ledger.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	GetEventByMessage(ctx context.Context, messageID int64) (*model.Event, error)
	ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	SetEventMessage(ctx context.Context, id, messageID int64) error
	MarkEventDeleted(ctx context.Context, id int64) error

	// Attendance ledger
	UpsertAttendance(ctx context.Context, att *model.EventAttendance) (created bool, err error)
	GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error)
	ListAttendance(ctx context.Context, eventID int64) ([]*model.EventAttendance, error)
	// DeleteAttendance removes every row for the (event, member) pair;
	// deleting an absent pair is not an error.
	DeleteAttendance(ctx context.Context, eventID, memberID int64) error
	// ListAttendanceRows returns finished-event attendance joined with
	// event fields for statistics aggregation.
	ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error)

	// Templates
	CreateTemplate(ctx context.Context, tpl *model.EventTemplate) error
	GetTemplate(ctx context.Context, id int64) (*model.EventTemplate, error)
	ListTemplates(ctx context.Context) ([]*model.EventTemplate, error)
	DeleteTemplate(ctx context.Context, id int64) error

	// Moderators
	AddModerator(ctx context.Context, mod *model.EventModerator) error
	RemoveModerator(ctx context.Context, guildID, memberID int64) error
	GetModerator(ctx context.Context, guildID, memberID int64) (*model.EventModerator, error)
	ListModerators(ctx context.Context, guildID int64) ([]*model.EventModerator, error)

	// Channels
	AddChannel(ctx context.Context, ch *model.EventChannel) error
	RemoveChannel(ctx context.Context, guildID, channelID int64) error
	GetChannel(ctx context.Context, guildID, channelID int64) (*model.EventChannel, error)
	ListChannels(ctx context.Context, guildID int64) ([]*model.EventChannel, error)

	// Transaction support. Used by the finish transition so the status
	// flip and every recomputed reward land atomically.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
