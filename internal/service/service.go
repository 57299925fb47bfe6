// Package service implements the event lifecycle, the attendance
// ledger, and the authorization rules that sit between the chat
// gateway and the store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/clanhall/evebot/internal/events"
	"github.com/clanhall/evebot/internal/idgen"
	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/store"
)

// EventService coordinates event lifecycle transitions, ledger edits,
// and reward computation on top of the store.
type EventService struct {
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
	owners    map[int64]bool
}

// NewEventService returns an EventService backed by the given store and
// publisher. Owners are always authorized for administrative actions.
func NewEventService(s store.Store, p events.Publisher, logger *slog.Logger, owners []int64) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	ownerSet := make(map[int64]bool, len(owners))
	for _, id := range owners {
		ownerSet[id] = true
	}
	return &EventService{
		store:     s,
		publisher: p,
		logger:    logger,
		owners:    ownerSet,
	}
}

// publish emits a bus event. Failures are logged but never block the caller;
// the database is the source of truth and the bus is advisory.
func (s *EventService) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// correlationID tags a bus payload series; generation failures degrade
// to an empty tag rather than failing the operation.
func (s *EventService) correlationID() string {
	id, err := idgen.Generate()
	if err != nil {
		s.logger.Warn("failed to generate correlation id", "error", err)
		return ""
	}
	return id
}

// mapStoreErr converts driver-level not-found errors into ErrNotFound.
func mapStoreErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsModerator reports whether the member is registered as an event
// moderator for the guild. Bot owners always qualify.
func (s *EventService) IsModerator(ctx context.Context, guildID, memberID int64) (bool, error) {
	if s.owners[memberID] {
		return true, nil
	}
	_, err := s.store.GetModerator(ctx, guildID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// canAdminister reports whether the member may run lifecycle transitions
// and ledger edits on the event: the organizer, a moderator, or an owner.
func (s *EventService) canAdminister(ctx context.Context, event *model.Event, memberID int64) (bool, error) {
	if event.MemberID == memberID {
		return true, nil
	}
	return s.IsModerator(ctx, event.GuildID, memberID)
}

// CreateEvent instantiates a pending event from a template, snapshotting
// the template's economic parameters.
func (s *EventService) CreateEvent(ctx context.Context, guildID, channelID int64, organizer model.Member, templateID int64) (*model.Event, error) {
	tpl, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	event := &model.Event{
		GuildID:           guildID,
		ChannelID:         channelID,
		MemberID:          organizer.ID,
		MemberName:        organizer.Name,
		MemberDisplayName: organizer.DisplayName,
		Type:              tpl.Type,
		Unit:              tpl.Unit,
		Capacity:          tpl.Capacity,
		Cost:              tpl.Cost,
		Penalty:           tpl.Penalty,
		Military:          tpl.Military,
		Overnight:         tpl.Overnight,
		Title:             tpl.Title,
		Description:       tpl.Description,
		Quantity:          tpl.Quantity,
		Status:            model.StatusPending,
	}
	if err := model.ValidateEvent(event); err != nil {
		return nil, err
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// StartEvent transitions a pending event to STARTED and announces it.
func (s *EventService) StartEvent(ctx context.Context, eventID int64, actor model.Member) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if ok, err := s.canAdminister(ctx, event, actor.ID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnauthorized
	}
	if !event.Status.CanTransitionTo(model.StatusStarted) {
		return nil, ErrInvalidState
	}

	event.Status = model.StatusStarted
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, events.TopicEventStarted, events.EventStarted{
		CorrelationID: s.correlationID(),
		Event:         event,
	})
	s.logger.Info("event started", "event_id", event.ID, "type", event.Type, "organizer", event.MemberID)
	return event, nil
}

// SetEventMessage records the chat message an event is rendered on.
func (s *EventService) SetEventMessage(ctx context.Context, eventID, messageID int64) error {
	return mapStoreErr(s.store.SetEventMessage(ctx, eventID, messageID))
}

// resolveQuantity picks the realized quantity for a finishing event:
// the explicit argument wins, then the event's default, else an error.
func resolveQuantity(event *model.Event, quantity int) (int, error) {
	if quantity > 0 {
		return quantity, nil
	}
	if event.Quantity > 0 {
		return event.Quantity, nil
	}
	return 0, ErrQuantityRequired
}

// FinishEvent transitions a started event to FINISHED, credits the
// organizer as a full attendee, and computes every ledger reward. The
// status flip and all reward writes land in one transaction.
func (s *EventService) FinishEvent(ctx context.Context, eventID int64, actor model.Member, quantity int) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if ok, err := s.canAdminister(ctx, event, actor.ID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnauthorized
	}
	if !event.Status.CanTransitionTo(model.StatusFinished) {
		return nil, ErrInvalidState
	}
	if _, err := resolveQuantity(event, quantity); err != nil {
		return nil, err
	}

	var (
		finished  *model.Event
		attendees int
	)
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		// Re-read inside the transaction so a concurrent finish loses.
		cur, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return mapStoreErr(err)
		}
		if !cur.Status.CanTransitionTo(model.StatusFinished) {
			return ErrInvalidState
		}

		q, err := resolveQuantity(cur, quantity)
		if err != nil {
			return err
		}
		cur.Quantity = q
		cur.Status = model.StatusFinished

		// The organizer is always credited as a full attendee.
		organizer := &model.EventAttendance{
			EventID:           cur.ID,
			MemberID:          cur.MemberID,
			MemberName:        cur.MemberName,
			MemberDisplayName: cur.MemberDisplayName,
			Type:              model.AttendanceFull,
		}
		if _, err := tx.UpsertAttendance(ctx, organizer); err != nil {
			return err
		}

		rows, err := tx.ListAttendance(ctx, cur.ID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			row.Reward = cur.Reward(row.Type)
			if _, err := tx.UpsertAttendance(ctx, row); err != nil {
				return err
			}
		}
		attendees = len(rows)

		if err := tx.UpdateEvent(ctx, cur); err != nil {
			return mapStoreErr(err)
		}
		finished = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEventFinished, events.EventFinished{
		CorrelationID: s.correlationID(),
		Event:         finished,
		Attendees:     attendees,
	})
	s.logger.Info("event finished", "event_id", finished.ID, "quantity", finished.Quantity, "attendees", attendees)
	return finished, nil
}

// CancelEvent voids a started event. Ledger rows survive for the record
// but rewards stay zero and the event never feeds statistics.
func (s *EventService) CancelEvent(ctx context.Context, eventID int64, actor model.Member) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if ok, err := s.canAdminister(ctx, event, actor.ID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnauthorized
	}
	if !event.Status.CanTransitionTo(model.StatusCanceled) {
		return nil, ErrInvalidState
	}

	event.Status = model.StatusCanceled
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, events.TopicEventCanceled, events.EventCanceled{
		CorrelationID: s.correlationID(),
		Event:         event,
	})
	s.logger.Info("event canceled", "event_id", event.ID)
	return event, nil
}

// DeleteEvent soft-deletes an event. Deleted events disappear from
// every lookup, listing, and statistics export.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int64, actor model.Member) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return mapStoreErr(err)
	}
	if ok, err := s.canAdminister(ctx, event, actor.ID); err != nil {
		return err
	} else if !ok {
		return ErrUnauthorized
	}

	if err := s.store.MarkEventDeleted(ctx, eventID); err != nil {
		return mapStoreErr(err)
	}

	s.publish(ctx, events.TopicEventDeleted, events.EventDeleted{
		CorrelationID: s.correlationID(),
		EventID:       eventID,
	})
	s.logger.Info("event deleted", "event_id", eventID)
	return nil
}

// SetFlag toggles a modifier flag on a running event. Only moderators
// and the organizer may toggle, and only before the event terminates.
func (s *EventService) SetFlag(ctx context.Context, eventID int64, flag model.EventFlag, on bool, actor model.Member) (*model.Event, error) {
	if !flag.IsValid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{{Field: "flag", Message: "unknown flag"}}}
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if ok, err := s.canAdminister(ctx, event, actor.ID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnauthorized
	}
	if event.Status.IsTerminal() {
		return nil, ErrInvalidState
	}
	if event.Flag(flag) == on {
		return event, nil
	}

	event.SetFlag(flag, on)
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, events.TopicEventFlag, events.EventFlag{
		CorrelationID: s.correlationID(),
		EventID:       event.ID,
		Flag:          flag,
		On:            on,
	})
	s.logger.Info("event flag toggled", "event_id", event.ID, "flag", flag, "on", on)
	return event, nil
}

// AddAttendance records or reclassifies a member's attendance on a
// running event. Rewards stay zero until the event finishes.
func (s *EventService) AddAttendance(ctx context.Context, eventID int64, member model.Member, atype model.AttendanceType) (*model.EventAttendance, error) {
	if !atype.IsValid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{{Field: "type", Message: "unknown attendance type"}}}
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if event.Status.IsTerminal() {
		return nil, ErrInvalidState
	}

	att := &model.EventAttendance{
		EventID:           eventID,
		MemberID:          member.ID,
		MemberName:        member.Name,
		MemberDisplayName: member.DisplayName,
		Type:              atype,
	}
	created, err := s.store.UpsertAttendance(ctx, att)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicAttendanceRecorded, events.AttendanceRecorded{
		CorrelationID: s.correlationID(),
		Attendance:    att,
	})
	s.logger.Info("attendance recorded",
		"event_id", eventID, "member_id", member.ID, "type", atype, "created", created)
	return att, nil
}

// AdjustAttendance is the moderator override for ledger edits: unlike
// AddAttendance it also works on finished and canceled events, and on a
// finished event it computes the row's reward from the event's settled
// parameters right away.
func (s *EventService) AdjustAttendance(ctx context.Context, eventID int64, member model.Member, atype model.AttendanceType) (*model.EventAttendance, error) {
	if !atype.IsValid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{{Field: "type", Message: "unknown attendance type"}}}
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	att := &model.EventAttendance{
		EventID:           eventID,
		MemberID:          member.ID,
		MemberName:        member.Name,
		MemberDisplayName: member.DisplayName,
		Type:              atype,
	}
	if event.Status == model.StatusFinished {
		att.Reward = event.Reward(atype)
	}
	created, err := s.store.UpsertAttendance(ctx, att)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicAttendanceRecorded, events.AttendanceRecorded{
		CorrelationID: s.correlationID(),
		Attendance:    att,
	})
	s.logger.Info("attendance adjusted",
		"event_id", eventID, "member_id", member.ID, "type", atype, "created", created, "reward", att.Reward)
	return att, nil
}

// RemoveAttendance withdraws a member from a running event's ledger.
// Removing an absent member is a no-op.
func (s *EventService) RemoveAttendance(ctx context.Context, eventID, memberID int64) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return mapStoreErr(err)
	}
	if event.Status.IsTerminal() {
		return ErrInvalidState
	}

	if err := s.store.DeleteAttendance(ctx, eventID, memberID); err != nil {
		return err
	}

	s.publish(ctx, events.TopicAttendanceRemoved, events.AttendanceRemoved{
		CorrelationID: s.correlationID(),
		EventID:       eventID,
		MemberID:      memberID,
	})
	return nil
}

// GetEvent returns an event by id.
func (s *EventService) GetEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return event, nil
}

// EventByMessage resolves the event rendered on the given chat message.
func (s *EventService) EventByMessage(ctx context.Context, messageID int64) (*model.Event, error) {
	event, err := s.store.GetEventByMessage(ctx, messageID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return event, nil
}

// ListEvents returns events matching the filter.
func (s *EventService) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	return s.store.ListEvents(ctx, filter)
}

// GetAttendance returns a member's ledger row for an event.
func (s *EventService) GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error) {
	att, err := s.store.GetAttendance(ctx, eventID, memberID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return att, nil
}

// ListAttendance returns the ledger rows for an event.
func (s *EventService) ListAttendance(ctx context.Context, eventID int64) ([]*model.EventAttendance, error) {
	return s.store.ListAttendance(ctx, eventID)
}

// CreateTemplate validates and stores a new event template.
func (s *EventService) CreateTemplate(ctx context.Context, tpl *model.EventTemplate) error {
	if err := model.ValidateTemplate(tpl); err != nil {
		return err
	}
	return s.store.CreateTemplate(ctx, tpl)
}

// GetTemplate returns a template by id.
func (s *EventService) GetTemplate(ctx context.Context, id int64) (*model.EventTemplate, error) {
	tpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return tpl, nil
}

// ListTemplates returns all templates.
func (s *EventService) ListTemplates(ctx context.Context) ([]*model.EventTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// DeleteTemplate removes a template. Existing events keep their
// snapshotted parameters.
func (s *EventService) DeleteTemplate(ctx context.Context, id int64) error {
	return mapStoreErr(s.store.DeleteTemplate(ctx, id))
}

// AddModerator registers a guild member as an event moderator.
func (s *EventService) AddModerator(ctx context.Context, mod *model.EventModerator) error {
	return s.store.AddModerator(ctx, mod)
}

// RemoveModerator revokes a member's moderator registration.
func (s *EventService) RemoveModerator(ctx context.Context, guildID, memberID int64) error {
	return mapStoreErr(s.store.RemoveModerator(ctx, guildID, memberID))
}

// ListModerators returns the guild's registered moderators.
func (s *EventService) ListModerators(ctx context.Context, guildID int64) ([]*model.EventModerator, error) {
	return s.store.ListModerators(ctx, guildID)
}

// AddChannel registers a text channel as hosting events.
func (s *EventService) AddChannel(ctx context.Context, ch *model.EventChannel) error {
	return s.store.AddChannel(ctx, ch)
}

// RemoveChannel revokes a channel registration.
func (s *EventService) RemoveChannel(ctx context.Context, guildID, channelID int64) error {
	return mapStoreErr(s.store.RemoveChannel(ctx, guildID, channelID))
}

// IsEventChannel reports whether the channel is registered for events.
// A guild with no registered channels accepts events anywhere.
func (s *EventService) IsEventChannel(ctx context.Context, guildID, channelID int64) (bool, error) {
	chans, err := s.store.ListChannels(ctx, guildID)
	if err != nil {
		return false, err
	}
	if len(chans) == 0 {
		return true, nil
	}
	for _, ch := range chans {
		if ch.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

// ListChannels returns the guild's registered event channels.
func (s *EventService) ListChannels(ctx context.Context, guildID int64) ([]*model.EventChannel, error) {
	return s.store.ListChannels(ctx, guildID)
}

// ListAttendanceRows returns finished-event ledger rows for statistics.
func (s *EventService) ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error) {
	return s.store.ListAttendanceRows(ctx, filter)
}
