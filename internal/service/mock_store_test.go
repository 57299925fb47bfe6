package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/store"
)

// mockStore is an in-memory store.Store for service tests.
type mockStore struct {
	mu sync.Mutex

	nextEventID      int64
	nextAttendanceID int64
	nextTemplateID   int64
	nextRegistryID   int64

	events      map[int64]*model.Event
	attendances map[int64]*model.EventAttendance
	templates   map[int64]*model.EventTemplate
	moderators  map[int64]*model.EventModerator
	channels    map[int64]*model.EventChannel

	// upsertErr fails an UpsertAttendance call once upsertErrIn more
	// calls have happened, then clears itself.
	upsertErr   error
	upsertErrIn int
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		events:      make(map[int64]*model.Event),
		attendances: make(map[int64]*model.EventAttendance),
		templates:   make(map[int64]*model.EventTemplate),
		moderators:  make(map[int64]*model.EventModerator),
		channels:    make(map[int64]*model.EventChannel),
	}
}

func copyEvent(e *model.Event) *model.Event {
	c := *e
	return &c
}

func copyAttendance(a *model.EventAttendance) *model.EventAttendance {
	c := *a
	return &c
}

func (m *mockStore) CreateEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	event.ID = m.nextEventID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	m.events[event.ID] = copyEvent(event)
	return nil
}

func (m *mockStore) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.Status == model.StatusDeleted {
		return nil, sql.ErrNoRows
	}
	return copyEvent(e), nil
}

func (m *mockStore) GetEventByMessage(ctx context.Context, messageID int64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.MessageID == messageID && e.Status != model.StatusDeleted {
			return copyEvent(e), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.Status == model.StatusDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.GuildID != 0 && e.GuildID != filter.GuildID {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, s := range filter.Status {
				if e.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, copyEvent(e))
	}
	return out, nil
}

func (m *mockStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	event.UpdatedAt = time.Now()
	m.events[event.ID] = copyEvent(event)
	return nil
}

func (m *mockStore) SetEventMessage(ctx context.Context, id, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.MessageID = messageID
	return nil
}

func (m *mockStore) MarkEventDeleted(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.Status == model.StatusDeleted {
		return sql.ErrNoRows
	}
	e.Status = model.StatusDeleted
	return nil
}

// failUpsert arms a one-shot UpsertAttendance failure on the nth call
// from now (1 = the very next call).
func (m *mockStore) failUpsert(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
	m.upsertErrIn = n
}

func (m *mockStore) UpsertAttendance(ctx context.Context, att *model.EventAttendance) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		m.upsertErrIn--
		if m.upsertErrIn <= 0 {
			err := m.upsertErr
			m.upsertErr = nil
			return false, err
		}
	}
	for _, a := range m.attendances {
		if a.EventID == att.EventID && a.MemberID == att.MemberID {
			a.Type = att.Type
			a.Reward = att.Reward
			a.MemberName = att.MemberName
			a.MemberDisplayName = att.MemberDisplayName
			a.UpdatedAt = time.Now()
			att.ID = a.ID
			att.CreatedAt = a.CreatedAt
			att.UpdatedAt = a.UpdatedAt
			return false, nil
		}
	}
	m.nextAttendanceID++
	att.ID = m.nextAttendanceID
	att.CreatedAt = time.Now()
	att.UpdatedAt = att.CreatedAt
	m.attendances[att.ID] = copyAttendance(att)
	return true, nil
}

func (m *mockStore) GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attendances {
		if a.EventID == eventID && a.MemberID == memberID {
			return copyAttendance(a), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListAttendance(ctx context.Context, eventID int64) ([]*model.EventAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.EventAttendance
	for id := int64(1); id <= m.nextAttendanceID; id++ {
		a, ok := m.attendances[id]
		if ok && a.EventID == eventID {
			out = append(out, copyAttendance(a))
		}
	}
	return out, nil
}

func (m *mockStore) DeleteAttendance(ctx context.Context, eventID, memberID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.attendances {
		if a.EventID == eventID && a.MemberID == memberID {
			delete(m.attendances, id)
		}
	}
	return nil
}

func (m *mockStore) ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AttendanceRow
	for id := int64(1); id <= m.nextAttendanceID; id++ {
		a, ok := m.attendances[id]
		if !ok {
			continue
		}
		e, ok := m.events[a.EventID]
		if !ok || e.Status != model.StatusFinished {
			continue
		}
		if filter.EventMin > 0 && e.ID < filter.EventMin {
			continue
		}
		if filter.EventMax > 0 && e.ID > filter.EventMax {
			continue
		}
		if filter.MemberID != 0 && a.MemberID != filter.MemberID {
			continue
		}
		out = append(out, &model.AttendanceRow{
			MemberID:          a.MemberID,
			MemberDisplayName: a.MemberDisplayName,
			EventID:           e.ID,
			EventType:         e.Type,
			Quantity:          e.Quantity,
			Reward:            a.Reward,
		})
	}
	return out, nil
}

func (m *mockStore) CreateTemplate(ctx context.Context, tpl *model.EventTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTemplateID++
	tpl.ID = m.nextTemplateID
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = tpl.CreatedAt
	c := *tpl
	m.templates[tpl.ID] = &c
	return nil
}

func (m *mockStore) GetTemplate(ctx context.Context, id int64) (*model.EventTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (m *mockStore) ListTemplates(ctx context.Context) ([]*model.EventTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.EventTemplate
	for id := int64(1); id <= m.nextTemplateID; id++ {
		if t, ok := m.templates[id]; ok {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteTemplate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.templates, id)
	return nil
}

func (m *mockStore) AddModerator(ctx context.Context, mod *model.EventModerator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRegistryID++
	mod.ID = m.nextRegistryID
	c := *mod
	m.moderators[mod.ID] = &c
	return nil
}

func (m *mockStore) RemoveModerator(ctx context.Context, guildID, memberID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, mod := range m.moderators {
		if mod.GuildID == guildID && mod.MemberID == memberID {
			delete(m.moderators, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStore) GetModerator(ctx context.Context, guildID, memberID int64) (*model.EventModerator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mod := range m.moderators {
		if mod.GuildID == guildID && mod.MemberID == memberID {
			c := *mod
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListModerators(ctx context.Context, guildID int64) ([]*model.EventModerator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.EventModerator
	for _, mod := range m.moderators {
		if mod.GuildID == guildID {
			c := *mod
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockStore) AddChannel(ctx context.Context, ch *model.EventChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRegistryID++
	ch.ID = m.nextRegistryID
	c := *ch
	m.channels[ch.ID] = &c
	return nil
}

func (m *mockStore) RemoveChannel(ctx context.Context, guildID, channelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.channels {
		if ch.GuildID == guildID && ch.ChannelID == channelID {
			delete(m.channels, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStore) GetChannel(ctx context.Context, guildID, channelID int64) (*model.EventChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		if ch.GuildID == guildID && ch.ChannelID == channelID {
			c := *ch
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListChannels(ctx context.Context, guildID int64) ([]*model.EventChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.EventChannel
	for _, ch := range m.channels {
		if ch.GuildID == guildID {
			c := *ch
			out = append(out, &c)
		}
	}
	return out, nil
}

// RunInTransaction mirrors the real store's all-or-nothing semantics:
// a failing callback restores the pre-transaction state.
func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type mockSnapshot struct {
	nextEventID      int64
	nextAttendanceID int64
	events           map[int64]*model.Event
	attendances      map[int64]*model.EventAttendance
}

func (m *mockStore) snapshot() mockSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := mockSnapshot{
		nextEventID:      m.nextEventID,
		nextAttendanceID: m.nextAttendanceID,
		events:           make(map[int64]*model.Event, len(m.events)),
		attendances:      make(map[int64]*model.EventAttendance, len(m.attendances)),
	}
	for id, e := range m.events {
		snap.events[id] = copyEvent(e)
	}
	for id, a := range m.attendances {
		snap.attendances[id] = copyAttendance(a)
	}
	return snap
}

func (m *mockStore) restore(snap mockSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID = snap.nextEventID
	m.nextAttendanceID = snap.nextAttendanceID
	m.events = snap.events
	m.attendances = snap.attendances
}

func (m *mockStore) Close() error {
	return nil
}
