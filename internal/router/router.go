// Package router turns chat message reactions into ledger operations.
// It resolves the reacted message to an event, classifies the emoji,
// and either records attendance, toggles a flag, or strips the
// reaction when it means nothing or the actor may not use it.
package router

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/service"
)

// defaultModeratorTTL bounds how stale a cached moderator verdict can be.
const defaultModeratorTTL = time.Minute

// Reaction is one emoji add or remove on a chat message.
type Reaction struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	Member    model.Member
	Emoji     string
}

// Messenger removes reactions from chat messages. The gateway
// implements it against the chat API.
type Messenger interface {
	RemoveReaction(ctx context.Context, channelID, messageID, memberID int64, emoji string) error
}

// EventService is the slice of the service layer the router needs.
type EventService interface {
	EventByMessage(ctx context.Context, messageID int64) (*model.Event, error)
	AddAttendance(ctx context.Context, eventID int64, member model.Member, atype model.AttendanceType) (*model.EventAttendance, error)
	RemoveAttendance(ctx context.Context, eventID, memberID int64) error
	GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error)
	SetFlag(ctx context.Context, eventID int64, flag model.EventFlag, on bool, actor model.Member) (*model.Event, error)
	IsModerator(ctx context.Context, guildID, memberID int64) (bool, error)
}

// Router dispatches reactions to the event service.
type Router struct {
	svc       EventService
	messenger Messenger
	table     *Table
	mods      *moderatorCache
	logger    *slog.Logger
}

// New returns a Router using the given emoji table. A nil table uses
// the built-in mapping.
func New(svc EventService, messenger Messenger, table *Table, logger *slog.Logger) *Router {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		svc:       svc,
		messenger: messenger,
		table:     table,
		mods:      newModeratorCache(defaultModeratorTTL),
		logger:    logger,
	}
}

// Table returns the router's emoji table.
func (r *Router) Table() *Table {
	return r.table
}

// InvalidateModerator drops a member's cached moderator verdict.
func (r *Router) InvalidateModerator(guildID, memberID int64) {
	r.mods.invalidate(guildID, memberID)
}

// strip removes the member's reaction from the message. Best effort;
// a failed strip leaves a cosmetic artifact, not a ledger error.
func (r *Router) strip(ctx context.Context, reaction Reaction) {
	err := r.messenger.RemoveReaction(ctx, reaction.ChannelID, reaction.MessageID, reaction.Member.ID, reaction.Emoji)
	if err != nil {
		r.logger.Warn("failed to strip reaction",
			"message_id", reaction.MessageID, "member_id", reaction.Member.ID, "emoji", reaction.Emoji, "error", err)
	}
}

// isModerator answers from the cache when it can.
func (r *Router) isModerator(ctx context.Context, guildID, memberID int64) (bool, error) {
	if verdict, ok := r.mods.get(guildID, memberID); ok {
		return verdict, nil
	}
	verdict, err := r.svc.IsModerator(ctx, guildID, memberID)
	if err != nil {
		return false, err
	}
	r.mods.set(guildID, memberID, verdict)
	return verdict, nil
}

// HandleAdd processes a newly added reaction. Meaningless, late, or
// unauthorized reactions are stripped, including reactions on messages
// that host no tracked event.
func (r *Router) HandleAdd(ctx context.Context, reaction Reaction) error {
	event, err := r.svc.EventByMessage(ctx, reaction.MessageID)
	if errors.Is(err, service.ErrNotFound) {
		// The message hosts no tracked event, or it predates tracking.
		r.strip(ctx, reaction)
		return nil
	}
	if err != nil {
		return err
	}

	if atype, ok := r.table.Attendance(reaction.Emoji); ok {
		return r.handleAttendanceAdd(ctx, event, reaction, atype)
	}
	if flag, ok := r.table.Flag(reaction.Emoji); ok {
		return r.handleFlagAdd(ctx, event, reaction, flag)
	}

	// Unknown emoji on an event message.
	r.strip(ctx, reaction)
	return nil
}

func (r *Router) handleAttendanceAdd(ctx context.Context, event *model.Event, reaction Reaction, atype model.AttendanceType) error {
	_, err := r.svc.AddAttendance(ctx, event.ID, reaction.Member, atype)
	if errors.Is(err, service.ErrInvalidState) {
		// The event already terminated; the reaction came too late.
		r.strip(ctx, reaction)
		return nil
	}
	if err != nil {
		return err
	}

	// Reclassification: clear the member's other attendance emoji so
	// the message mirrors the ledger.
	for _, emoji := range r.table.AttendanceEmojis() {
		if emoji == reaction.Emoji {
			continue
		}
		stale := reaction
		stale.Emoji = emoji
		r.strip(ctx, stale)
	}
	return nil
}

func (r *Router) handleFlagAdd(ctx context.Context, event *model.Event, reaction Reaction, flag model.EventFlag) error {
	ok, err := r.isModerator(ctx, reaction.GuildID, reaction.Member.ID)
	if err != nil {
		return err
	}
	if !ok && event.MemberID != reaction.Member.ID {
		r.strip(ctx, reaction)
		return nil
	}

	_, err = r.svc.SetFlag(ctx, event.ID, flag, true, reaction.Member)
	if errors.Is(err, service.ErrInvalidState) || errors.Is(err, service.ErrUnauthorized) {
		r.strip(ctx, reaction)
		return nil
	}
	return err
}

// HandleRemove processes a removed reaction. Removals never get
// stripped back; stale or meaningless ones are simply ignored.
func (r *Router) HandleRemove(ctx context.Context, reaction Reaction) error {
	event, err := r.svc.EventByMessage(ctx, reaction.MessageID)
	if errors.Is(err, service.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if atype, ok := r.table.Attendance(reaction.Emoji); ok {
		return r.handleAttendanceRemove(ctx, event, reaction, atype)
	}
	if flag, ok := r.table.Flag(reaction.Emoji); ok {
		return r.handleFlagRemove(ctx, event, reaction, flag)
	}
	return nil
}

func (r *Router) handleAttendanceRemove(ctx context.Context, event *model.Event, reaction Reaction, atype model.AttendanceType) error {
	// Only withdraw when the ledger still carries this classification;
	// a stale emoji stripped after reclassification must not evict the
	// member's current row.
	att, err := r.svc.GetAttendance(ctx, event.ID, reaction.Member.ID)
	if errors.Is(err, service.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if att.Type != atype {
		return nil
	}

	err = r.svc.RemoveAttendance(ctx, event.ID, reaction.Member.ID)
	if errors.Is(err, service.ErrInvalidState) {
		return nil
	}
	return err
}

func (r *Router) handleFlagRemove(ctx context.Context, event *model.Event, reaction Reaction, flag model.EventFlag) error {
	ok, err := r.isModerator(ctx, reaction.GuildID, reaction.Member.ID)
	if err != nil {
		return err
	}
	if !ok && event.MemberID != reaction.Member.ID {
		return nil
	}

	_, err = r.svc.SetFlag(ctx, event.ID, flag, false, reaction.Member)
	if errors.Is(err, service.ErrInvalidState) || errors.Is(err, service.ErrUnauthorized) {
		return nil
	}
	return err
}
