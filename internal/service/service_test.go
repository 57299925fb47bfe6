package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/clanhall/evebot/internal/events"
	"github.com/clanhall/evebot/internal/model"
)

// recordingPublisher captures published topics for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}

var (
	organizer = model.Member{ID: 300, Name: "organizer", DisplayName: "Organizer"}
	alice     = model.Member{ID: 301, Name: "alice", DisplayName: "Alice"}
	bob       = model.Member{ID: 302, Name: "bob", DisplayName: "Bob"}
	stranger  = model.Member{ID: 999, Name: "stranger", DisplayName: "Stranger"}
)

func newTestService(t *testing.T) (*EventService, *mockStore, *recordingPublisher) {
	t.Helper()
	ms := newMockStore()
	pub := &recordingPublisher{}
	svc := NewEventService(ms, pub, slog.Default(), nil)
	return svc, ms, pub
}

// seedTemplate stores a chain template: capacity 100, cost 10,
// penalty 50, military 20, overnight 25.
func seedTemplate(t *testing.T, svc *EventService) *model.EventTemplate {
	t.Helper()
	tpl := &model.EventTemplate{
		Type:      model.TypeChain,
		Unit:      model.UnitTime,
		Capacity:  100,
		Cost:      10,
		Penalty:   50,
		Military:  20,
		Overnight: 25,
		Title:     "Chain night",
	}
	if err := svc.CreateTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	return tpl
}

// startEvent creates a pending event from the template and starts it.
func startEvent(t *testing.T, svc *EventService, templateID int64) *model.Event {
	t.Helper()
	ctx := context.Background()
	event, err := svc.CreateEvent(ctx, 100, 200, organizer, templateID)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	started, err := svc.StartEvent(ctx, event.ID, organizer)
	if err != nil {
		t.Fatalf("StartEvent: %v", err)
	}
	return started
}

func TestCreateEventSnapshotsTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)

	event, err := svc.CreateEvent(ctx, 100, 200, organizer, tpl.ID)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.Status != model.StatusPending {
		t.Errorf("status = %s, want PENDING", event.Status)
	}
	if event.Capacity != 100 || event.Cost != 10 || event.Penalty != 50 {
		t.Errorf("snapshot mismatch: %+v", event)
	}

	// Template deletion must not disturb the snapshot.
	if err := svc.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	got, err := svc.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Cost != 10 {
		t.Errorf("cost after template delete = %d, want 10", got.Cost)
	}
}

func TestCreateEventUnknownTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateEvent(context.Background(), 100, 200, organizer, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStartEventPublishes(t *testing.T) {
	svc, _, pub := newTestService(t)
	tpl := seedTemplate(t, svc)

	event := startEvent(t, svc, tpl.ID)
	if event.Status != model.StatusStarted {
		t.Errorf("status = %s, want STARTED", event.Status)
	}
	if !pub.published(events.TopicEventStarted) {
		t.Error("expected event.started to be published")
	}
}

func TestStartEventTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.StartEvent(context.Background(), event.ID, organizer); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestAttendanceReclassification(t *testing.T) {
	svc, ms, pub := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}
	// Switching classification replaces the row, never duplicates it.
	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendancePartial); err != nil {
		t.Fatalf("AddAttendance reclassify: %v", err)
	}

	rows, err := ms.ListAttendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if rows[0].Type != model.AttendancePartial {
		t.Errorf("type = %s, want PARTIAL", rows[0].Type)
	}
	if !pub.published(events.TopicAttendanceRecorded) {
		t.Error("expected attendance.recorded to be published")
	}
}

func TestRemoveAttendanceIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}
	if err := svc.RemoveAttendance(ctx, event.ID, alice.ID); err != nil {
		t.Fatalf("RemoveAttendance: %v", err)
	}
	// Removing again is a no-op, not an error.
	if err := svc.RemoveAttendance(ctx, event.ID, alice.ID); err != nil {
		t.Fatalf("RemoveAttendance repeat: %v", err)
	}
}

func TestFinishEventComputesRewards(t *testing.T) {
	svc, ms, pub := newTestService(t)
	ctx := context.Background()

	// Scenario: cost 100, capacity 10, quantity 10, military +20%.
	tpl := &model.EventTemplate{
		Type:      model.TypeSiege,
		Unit:      model.UnitVisit,
		Capacity:  10,
		Cost:      100,
		Penalty:   50,
		Military:  20,
		Overnight: 25,
		Title:     "Siege",
	}
	if err := svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.SetFlag(ctx, event.ID, model.FlagMilitary, true, organizer); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance alice: %v", err)
	}
	if _, err := svc.AddAttendance(ctx, event.ID, bob, model.AttendancePartial); err != nil {
		t.Fatalf("AddAttendance bob: %v", err)
	}

	finished, err := svc.FinishEvent(ctx, event.ID, organizer, 10)
	if err != nil {
		t.Fatalf("FinishEvent: %v", err)
	}
	if finished.Status != model.StatusFinished {
		t.Errorf("status = %s, want FINISHED", finished.Status)
	}
	if finished.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", finished.Quantity)
	}

	rows, err := ms.ListAttendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	// Alice, Bob, and the auto-credited organizer.
	if len(rows) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(rows))
	}

	rewards := make(map[int64]int, len(rows))
	types := make(map[int64]model.AttendanceType, len(rows))
	for _, row := range rows {
		rewards[row.MemberID] = row.Reward
		types[row.MemberID] = row.Type
	}
	// Base 100*10/10 = 100, +20% military = 120; partial halves it.
	if rewards[alice.ID] != 120 {
		t.Errorf("alice reward = %d, want 120", rewards[alice.ID])
	}
	if rewards[bob.ID] != 60 {
		t.Errorf("bob reward = %d, want 60", rewards[bob.ID])
	}
	if types[organizer.ID] != model.AttendanceFull || rewards[organizer.ID] != 120 {
		t.Errorf("organizer credited as %s/%d, want FULL/120", types[organizer.ID], rewards[organizer.ID])
	}

	if !pub.published(events.TopicEventFinished) {
		t.Error("expected event.finished to be published")
	}
}

func TestFinishEventQuantityFallback(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tpl := &model.EventTemplate{
		Type:     model.TypeOnce,
		Unit:     model.UnitThing,
		Capacity: 4,
		Cost:     40,
		Penalty:  50,
		Quantity: 4,
		Title:    "World boss",
	}
	if err := svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	event := startEvent(t, svc, tpl.ID)

	// No explicit quantity; the template default applies.
	finished, err := svc.FinishEvent(ctx, event.ID, organizer, 0)
	if err != nil {
		t.Fatalf("FinishEvent: %v", err)
	}
	if finished.Quantity != 4 {
		t.Errorf("quantity = %d, want template default 4", finished.Quantity)
	}
}

func TestFinishEventQuantityRequired(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc) // no default quantity
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 0); !errors.Is(err, ErrQuantityRequired) {
		t.Fatalf("expected ErrQuantityRequired, got %v", err)
	}
}

func TestFinishEventUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.FinishEvent(context.Background(), event.ID, stranger, 10); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFinishEventByModerator(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if err := svc.AddModerator(ctx, &model.EventModerator{GuildID: 100, MemberID: alice.ID}); err != nil {
		t.Fatalf("AddModerator: %v", err)
	}
	if _, err := svc.FinishEvent(ctx, event.ID, alice, 50); err != nil {
		t.Fatalf("FinishEvent by moderator: %v", err)
	}
}

func TestFinishEventByOwner(t *testing.T) {
	ms := newMockStore()
	svc := NewEventService(ms, &recordingPublisher{}, slog.Default(), []int64{stranger.ID})
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.FinishEvent(ctx, event.ID, stranger, 50); err != nil {
		t.Fatalf("FinishEvent by owner: %v", err)
	}
}

func TestTerminalEventRejectsMutation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 50); err != nil {
		t.Fatalf("FinishEvent: %v", err)
	}

	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddAttendance on finished: got %v, want ErrInvalidState", err)
	}
	if err := svc.RemoveAttendance(ctx, event.ID, alice.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("RemoveAttendance on finished: got %v, want ErrInvalidState", err)
	}
	if _, err := svc.SetFlag(ctx, event.ID, model.FlagOvernight, true, organizer); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetFlag on finished: got %v, want ErrInvalidState", err)
	}
	if _, err := svc.CancelEvent(ctx, event.ID, organizer); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CancelEvent on finished: got %v, want ErrInvalidState", err)
	}
	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 50); !errors.Is(err, ErrInvalidState) {
		t.Errorf("FinishEvent twice: got %v, want ErrInvalidState", err)
	}
}

// A mid-settlement store failure must leave the event STARTED with all
// rewards untouched; the status flip and reward writes are one unit.
func TestFinishEventRollsBackOnFailure(t *testing.T) {
	svc, ms, pub := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance alice: %v", err)
	}
	if _, err := svc.AddAttendance(ctx, event.ID, bob, model.AttendancePartial); err != nil {
		t.Fatalf("AddAttendance bob: %v", err)
	}

	// Organizer auto-credit is the first write of the settlement; fail
	// the reward write after it.
	boom := errors.New("connection reset")
	ms.failUpsert(2, boom)

	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 50); !errors.Is(err, boom) {
		t.Fatalf("FinishEvent: got %v, want injected error", err)
	}

	got, err := svc.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Status != model.StatusStarted {
		t.Errorf("status = %s, want STARTED after rollback", got.Status)
	}
	if got.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 after rollback", got.Quantity)
	}

	rows, err := ms.ListAttendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ledger rows after rollback, got %d", len(rows))
	}
	for _, row := range rows {
		if row.MemberID == organizer.ID {
			t.Error("organizer auto-credit must not survive the rollback")
		}
		if row.Reward != 0 {
			t.Errorf("member %d reward = %d, want 0", row.MemberID, row.Reward)
		}
	}
	if pub.published(events.TopicEventFinished) {
		t.Error("event.finished must not be published on a failed settlement")
	}

	// The event is stuck-but-recoverable: a retry settles normally.
	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 50); err != nil {
		t.Fatalf("FinishEvent retry: %v", err)
	}
}

// Moderator ledger edits bypass the terminal gate and settle the row's
// reward immediately on a finished event.
func TestAdjustAttendanceAfterFinish(t *testing.T) {
	svc, ms, _ := newTestService(t)
	ctx := context.Background()
	tpl := &model.EventTemplate{
		Type:     model.TypeSiege,
		Unit:     model.UnitVisit,
		Capacity: 10,
		Cost:     100,
		Penalty:  50,
		Title:    "Siege",
	}
	if err := svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	event := startEvent(t, svc, tpl.ID)
	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}
	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 10); err != nil {
		t.Fatalf("FinishEvent: %v", err)
	}

	// Late-added member gets a reward from the settled parameters.
	att, err := svc.AdjustAttendance(ctx, event.ID, bob, model.AttendancePartial)
	if err != nil {
		t.Fatalf("AdjustAttendance add: %v", err)
	}
	if att.Reward != 50 {
		t.Errorf("bob reward = %d, want 50", att.Reward)
	}

	// Reclassification recomputes the reward in place.
	att, err = svc.AdjustAttendance(ctx, event.ID, alice, model.AttendancePartial)
	if err != nil {
		t.Fatalf("AdjustAttendance reclassify: %v", err)
	}
	if att.Reward != 50 {
		t.Errorf("alice reward = %d, want 50", att.Reward)
	}
	stored, err := ms.GetAttendance(ctx, event.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetAttendance: %v", err)
	}
	if stored.Type != model.AttendancePartial || stored.Reward != 50 {
		t.Errorf("stored row = %s/%d, want PARTIAL/50", stored.Type, stored.Reward)
	}

	// One row per (event, member) even through the override path.
	rows, err := ms.ListAttendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(rows))
	}
}

// Before finish the override records the row with reward zero, like a
// reaction would; rewards settle at finish time.
func TestAdjustAttendanceBeforeFinish(t *testing.T) {
	svc, ms, _ := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	att, err := svc.AdjustAttendance(ctx, event.ID, alice, model.AttendanceFull)
	if err != nil {
		t.Fatalf("AdjustAttendance: %v", err)
	}
	if att.Reward != 0 {
		t.Errorf("reward = %d, want 0 before finish", att.Reward)
	}
	stored, err := ms.GetAttendance(ctx, event.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetAttendance: %v", err)
	}
	if stored.Type != model.AttendanceFull {
		t.Errorf("type = %s, want FULL", stored.Type)
	}
}

func TestCancelEventKeepsLedgerVoid(t *testing.T) {
	svc, ms, pub := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}
	canceled, err := svc.CancelEvent(ctx, event.ID, organizer)
	if err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}
	if canceled.Status != model.StatusCanceled {
		t.Errorf("status = %s, want CANCELED", canceled.Status)
	}

	// Rows survive but stay unrewarded and never feed statistics.
	rows, err := ms.ListAttendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(rows) != 1 || rows[0].Reward != 0 {
		t.Errorf("canceled ledger rows = %+v, want 1 row with zero reward", rows)
	}
	statsRows, err := svc.ListAttendanceRows(ctx, model.StatsFilter{})
	if err != nil {
		t.Fatalf("ListAttendanceRows: %v", err)
	}
	if len(statsRows) != 0 {
		t.Errorf("canceled event leaked %d rows into statistics", len(statsRows))
	}
	if !pub.published(events.TopicEventCanceled) {
		t.Error("expected event.canceled to be published")
	}
}

func TestDeleteEventHidesEverywhere(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if err := svc.SetEventMessage(ctx, event.ID, 555); err != nil {
		t.Fatalf("SetEventMessage: %v", err)
	}
	if err := svc.DeleteEvent(ctx, event.ID, organizer); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if _, err := svc.GetEvent(ctx, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEvent after delete: got %v, want ErrNotFound", err)
	}
	if _, err := svc.EventByMessage(ctx, 555); !errors.Is(err, ErrNotFound) {
		t.Errorf("EventByMessage after delete: got %v, want ErrNotFound", err)
	}
	listed, err := svc.ListEvents(ctx, model.EventFilter{GuildID: 100})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("deleted event still listed: %+v", listed)
	}
	if !pub.published(events.TopicEventDeleted) {
		t.Error("expected event.deleted to be published")
	}
}

func TestSetFlagUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.SetFlag(context.Background(), event.ID, model.FlagMilitary, true, stranger); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSetFlagNoopWhenUnchanged(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	tpl := seedTemplate(t, svc)
	event := startEvent(t, svc, tpl.ID)

	before := len(pub.topics)
	if _, err := svc.SetFlag(ctx, event.ID, model.FlagMilitary, false, organizer); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if len(pub.topics) != before {
		t.Error("unchanged flag should not publish")
	}
}

func TestIsModerator(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ok, err := svc.IsModerator(ctx, 100, alice.ID)
	if err != nil {
		t.Fatalf("IsModerator: %v", err)
	}
	if ok {
		t.Error("unregistered member reported as moderator")
	}

	if err := svc.AddModerator(ctx, &model.EventModerator{GuildID: 100, MemberID: alice.ID}); err != nil {
		t.Fatalf("AddModerator: %v", err)
	}
	ok, err = svc.IsModerator(ctx, 100, alice.ID)
	if err != nil {
		t.Fatalf("IsModerator: %v", err)
	}
	if !ok {
		t.Error("registered moderator not recognized")
	}
}

func TestIsEventChannel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// No registrations: everything is an event channel.
	ok, err := svc.IsEventChannel(ctx, 100, 200)
	if err != nil {
		t.Fatalf("IsEventChannel: %v", err)
	}
	if !ok {
		t.Error("unrestricted guild should accept any channel")
	}

	if err := svc.AddChannel(ctx, &model.EventChannel{GuildID: 100, ChannelID: 201}); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if ok, _ := svc.IsEventChannel(ctx, 100, 200); ok {
		t.Error("unregistered channel accepted after registration exists")
	}
	if ok, _ := svc.IsEventChannel(ctx, 100, 201); !ok {
		t.Error("registered channel rejected")
	}
}

// TestEventLifecycleEndToEnd walks the full scenario: start a military
// siege, record attendance, finish, and verify rewards and statistics.
func TestEventLifecycleEndToEnd(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tpl := &model.EventTemplate{
		Type:      model.TypeSiege,
		Unit:      model.UnitVisit,
		Capacity:  10,
		Cost:      100,
		Penalty:   50,
		Military:  20,
		Overnight: 25,
		Title:     "Castle siege",
	}
	if err := svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	event := startEvent(t, svc, tpl.ID)

	if _, err := svc.SetFlag(ctx, event.ID, model.FlagMilitary, true, organizer); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if _, err := svc.AddAttendance(ctx, event.ID, alice, model.AttendanceFull); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}
	if _, err := svc.AddAttendance(ctx, event.ID, bob, model.AttendancePartial); err != nil {
		t.Fatalf("AddAttendance: %v", err)
	}

	if _, err := svc.FinishEvent(ctx, event.ID, organizer, 10); err != nil {
		t.Fatalf("FinishEvent: %v", err)
	}

	rows, err := svc.ListAttendanceRows(ctx, model.StatsFilter{MemberID: alice.ID})
	if err != nil {
		t.Fatalf("ListAttendanceRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 stats row for alice, got %d", len(rows))
	}
	if rows[0].Reward != 120 || rows[0].EventType != model.TypeSiege {
		t.Errorf("stats row = %+v, want reward 120 type SIEGE", rows[0])
	}
}
