// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateEvent(ctx context.Context, event *model.Event) error {
	return queryCreateEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	return queryGetEvent(ctx, s.db, id)
}

func (s *PostgresStore) GetEventByMessage(ctx context.Context, messageID int64) (*model.Event, error) {
	return queryGetEventByMessage(ctx, s.db, messageID)
}

func (s *PostgresStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	return queryListEvents(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	return queryUpdateEvent(ctx, s.db, event)
}

func (s *PostgresStore) SetEventMessage(ctx context.Context, id, messageID int64) error {
	return querySetEventMessage(ctx, s.db, id, messageID)
}

func (s *PostgresStore) MarkEventDeleted(ctx context.Context, id int64) error {
	return queryMarkEventDeleted(ctx, s.db, id)
}

func (s *PostgresStore) UpsertAttendance(ctx context.Context, att *model.EventAttendance) (bool, error) {
	return queryUpsertAttendance(ctx, s.db, att)
}

func (s *PostgresStore) GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error) {
	return queryGetAttendance(ctx, s.db, eventID, memberID)
}

func (s *PostgresStore) ListAttendance(ctx context.Context, eventID int64) ([]*model.EventAttendance, error) {
	return queryListAttendance(ctx, s.db, eventID)
}

func (s *PostgresStore) DeleteAttendance(ctx context.Context, eventID, memberID int64) error {
	return queryDeleteAttendance(ctx, s.db, eventID, memberID)
}

func (s *PostgresStore) ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error) {
	return queryListAttendanceRows(ctx, s.db, filter)
}

func (s *PostgresStore) CreateTemplate(ctx context.Context, tpl *model.EventTemplate) error {
	return queryCreateTemplate(ctx, s.db, tpl)
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id int64) (*model.EventTemplate, error) {
	return queryGetTemplate(ctx, s.db, id)
}

func (s *PostgresStore) ListTemplates(ctx context.Context) ([]*model.EventTemplate, error) {
	return queryListTemplates(ctx, s.db)
}

func (s *PostgresStore) DeleteTemplate(ctx context.Context, id int64) error {
	return queryDeleteTemplate(ctx, s.db, id)
}

func (s *PostgresStore) AddModerator(ctx context.Context, mod *model.EventModerator) error {
	return queryAddModerator(ctx, s.db, mod)
}

func (s *PostgresStore) RemoveModerator(ctx context.Context, guildID, memberID int64) error {
	return queryRemoveModerator(ctx, s.db, guildID, memberID)
}

func (s *PostgresStore) GetModerator(ctx context.Context, guildID, memberID int64) (*model.EventModerator, error) {
	return queryGetModerator(ctx, s.db, guildID, memberID)
}

func (s *PostgresStore) ListModerators(ctx context.Context, guildID int64) ([]*model.EventModerator, error) {
	return queryListModerators(ctx, s.db, guildID)
}

func (s *PostgresStore) AddChannel(ctx context.Context, ch *model.EventChannel) error {
	return queryAddChannel(ctx, s.db, ch)
}

func (s *PostgresStore) RemoveChannel(ctx context.Context, guildID, channelID int64) error {
	return queryRemoveChannel(ctx, s.db, guildID, channelID)
}

func (s *PostgresStore) GetChannel(ctx context.Context, guildID, channelID int64) (*model.EventChannel, error) {
	return queryGetChannel(ctx, s.db, guildID, channelID)
}

func (s *PostgresStore) ListChannels(ctx context.Context, guildID int64) ([]*model.EventChannel, error) {
	return queryListChannels(ctx, s.db, guildID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateEvent(ctx context.Context, event *model.Event) error {
	return queryCreateEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	return queryGetEvent(ctx, s.tx, id)
}

func (s *txStore) GetEventByMessage(ctx context.Context, messageID int64) (*model.Event, error) {
	return queryGetEventByMessage(ctx, s.tx, messageID)
}

func (s *txStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	return queryListEvents(ctx, s.tx, filter)
}

func (s *txStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	return queryUpdateEvent(ctx, s.tx, event)
}

func (s *txStore) SetEventMessage(ctx context.Context, id, messageID int64) error {
	return querySetEventMessage(ctx, s.tx, id, messageID)
}

func (s *txStore) MarkEventDeleted(ctx context.Context, id int64) error {
	return queryMarkEventDeleted(ctx, s.tx, id)
}

func (s *txStore) UpsertAttendance(ctx context.Context, att *model.EventAttendance) (bool, error) {
	return queryUpsertAttendance(ctx, s.tx, att)
}

func (s *txStore) GetAttendance(ctx context.Context, eventID, memberID int64) (*model.EventAttendance, error) {
	return queryGetAttendance(ctx, s.tx, eventID, memberID)
}

func (s *txStore) ListAttendance(ctx context.Context, eventID int64) ([]*model.EventAttendance, error) {
	return queryListAttendance(ctx, s.tx, eventID)
}

func (s *txStore) DeleteAttendance(ctx context.Context, eventID, memberID int64) error {
	return queryDeleteAttendance(ctx, s.tx, eventID, memberID)
}

func (s *txStore) ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error) {
	return queryListAttendanceRows(ctx, s.tx, filter)
}

func (s *txStore) CreateTemplate(ctx context.Context, tpl *model.EventTemplate) error {
	return queryCreateTemplate(ctx, s.tx, tpl)
}

func (s *txStore) GetTemplate(ctx context.Context, id int64) (*model.EventTemplate, error) {
	return queryGetTemplate(ctx, s.tx, id)
}

func (s *txStore) ListTemplates(ctx context.Context) ([]*model.EventTemplate, error) {
	return queryListTemplates(ctx, s.tx)
}

func (s *txStore) DeleteTemplate(ctx context.Context, id int64) error {
	return queryDeleteTemplate(ctx, s.tx, id)
}

func (s *txStore) AddModerator(ctx context.Context, mod *model.EventModerator) error {
	return queryAddModerator(ctx, s.tx, mod)
}

func (s *txStore) RemoveModerator(ctx context.Context, guildID, memberID int64) error {
	return queryRemoveModerator(ctx, s.tx, guildID, memberID)
}

func (s *txStore) GetModerator(ctx context.Context, guildID, memberID int64) (*model.EventModerator, error) {
	return queryGetModerator(ctx, s.tx, guildID, memberID)
}

func (s *txStore) ListModerators(ctx context.Context, guildID int64) ([]*model.EventModerator, error) {
	return queryListModerators(ctx, s.tx, guildID)
}

func (s *txStore) AddChannel(ctx context.Context, ch *model.EventChannel) error {
	return queryAddChannel(ctx, s.tx, ch)
}

func (s *txStore) RemoveChannel(ctx context.Context, guildID, channelID int64) error {
	return queryRemoveChannel(ctx, s.tx, guildID, channelID)
}

func (s *txStore) GetChannel(ctx context.Context, guildID, channelID int64) (*model.EventChannel, error) {
	return queryGetChannel(ctx, s.tx, guildID, channelID)
}

func (s *txStore) ListChannels(ctx context.Context, guildID int64) ([]*model.EventChannel, error) {
	return queryListChannels(ctx, s.tx, guildID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
