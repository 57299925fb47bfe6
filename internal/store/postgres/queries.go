package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/clanhall/evebot/internal/model"
)

// eventColumns is the column list used for SELECT statements on the events table.
const eventColumns = `id, guild_id, channel_id, message_id,
	member_id, member_name, member_display_name,
	type, unit, capacity, cost, penalty, military, overnight,
	title, description, quantity, status, is_military, is_overnight,
	created_at, updated_at`

// attendanceColumns is the column list for the event_attendances table.
const attendanceColumns = `id, event_id, member_id, member_name, member_display_name,
	type, reward, created_at, updated_at`

// templateColumns is the column list for the event_templates table.
const templateColumns = `id, type, unit, capacity, cost, penalty, military, overnight,
	quantity, title, description, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateEvent(ctx context.Context, db executor, e *model.Event) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO events (
			guild_id, channel_id, message_id,
			member_id, member_name, member_display_name,
			type, unit, capacity, cost, penalty, military, overnight,
			title, description, quantity, status, is_military, is_overnight
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19
		)
		RETURNING id, created_at, updated_at`,
		e.GuildID,
		e.ChannelID,
		nullID(e.MessageID),
		e.MemberID,
		e.MemberName,
		e.MemberDisplayName,
		string(e.Type),
		string(e.Unit),
		e.Capacity,
		e.Cost,
		e.Penalty,
		e.Military,
		e.Overnight,
		e.Title,
		e.Description,
		e.Quantity,
		string(e.Status),
		e.IsMilitary,
		e.IsOvernight,
	)
	return row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func queryGetEvent(ctx context.Context, db executor, id int64) (*model.Event, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1 AND status <> 'DELETED'`,
		id,
	)
	return scanEvent(row)
}

func queryGetEventByMessage(ctx context.Context, db executor, messageID int64) (*model.Event, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE message_id = $1 AND status <> 'DELETED'`,
		messageID,
	)
	return scanEvent(row)
}

func queryListEvents(ctx context.Context, db executor, filter model.EventFilter) ([]*model.Event, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.GuildID != 0 {
		whereClauses = append(whereClauses, "guild_id = "+nextArg())
		args = append(args, filter.GuildID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if !filter.IncludeDeleted {
		whereClauses = append(whereClauses, "status <> 'DELETED'")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY id DESC"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func queryUpdateEvent(ctx context.Context, db executor, e *model.Event) error {
	row := db.QueryRowContext(ctx, `
		UPDATE events SET
			message_id = $2,
			quantity = $3,
			status = $4,
			is_military = $5,
			is_overnight = $6,
			title = $7,
			description = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID,
		nullID(e.MessageID),
		e.Quantity,
		string(e.Status),
		e.IsMilitary,
		e.IsOvernight,
		e.Title,
		e.Description,
	)
	return row.Scan(&e.UpdatedAt)
}

func querySetEventMessage(ctx context.Context, db executor, id, messageID int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE events SET message_id = $2, updated_at = NOW()
		WHERE id = $1`,
		id, nullID(messageID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryMarkEventDeleted(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE events SET status = 'DELETED', updated_at = NOW()
		WHERE id = $1 AND status <> 'DELETED'`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryUpsertAttendance(ctx context.Context, db executor, a *model.EventAttendance) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict update.
	row := db.QueryRowContext(ctx, `
		INSERT INTO event_attendances (
			event_id, member_id, member_name, member_display_name, type, reward
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, member_id) DO UPDATE SET
			member_name = EXCLUDED.member_name,
			member_display_name = EXCLUDED.member_display_name,
			type = EXCLUDED.type,
			reward = EXCLUDED.reward,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)`,
		a.EventID,
		a.MemberID,
		a.MemberName,
		a.MemberDisplayName,
		string(a.Type),
		a.Reward,
	)

	var created bool
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &created); err != nil {
		return false, err
	}
	return created, nil
}

func queryGetAttendance(ctx context.Context, db executor, eventID, memberID int64) (*model.EventAttendance, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM event_attendances
		WHERE event_id = $1 AND member_id = $2`,
		eventID, memberID,
	)
	return scanAttendance(row)
}

func queryListAttendance(ctx context.Context, db executor, eventID int64) ([]*model.EventAttendance, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM event_attendances
		WHERE event_id = $1
		ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttendances(rows)
}

func queryDeleteAttendance(ctx context.Context, db executor, eventID, memberID int64) error {
	// Deleting an absent pair is not an error; removal is idempotent.
	_, err := db.ExecContext(ctx, `
		DELETE FROM event_attendances
		WHERE event_id = $1 AND member_id = $2`,
		eventID, memberID,
	)
	return err
}

func queryListAttendanceRows(ctx context.Context, db executor, filter model.StatsFilter) ([]*model.AttendanceRow, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	// Only finished events pay out; everything else is invisible to stats.
	whereClauses = append(whereClauses, "e.status = 'FINISHED'")

	if filter.From != nil {
		whereClauses = append(whereClauses, "e.updated_at >= "+nextArg())
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, "e.updated_at <= "+nextArg())
		args = append(args, *filter.To)
	}
	if filter.EventMin > 0 {
		whereClauses = append(whereClauses, "e.id >= "+nextArg())
		args = append(args, filter.EventMin)
	}
	if filter.EventMax > 0 {
		whereClauses = append(whereClauses, "e.id <= "+nextArg())
		args = append(args, filter.EventMax)
	}
	if len(filter.EventIDs) > 0 {
		placeholders := make([]string, len(filter.EventIDs))
		for i, id := range filter.EventIDs {
			placeholders[i] = nextArg()
			args = append(args, id)
		}
		whereClauses = append(whereClauses, "e.id IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.MemberID != 0 {
		whereClauses = append(whereClauses, "a.member_id = "+nextArg())
		args = append(args, filter.MemberID)
	}

	query := `
		SELECT a.member_id, a.member_display_name, e.id, e.type, e.quantity, a.reward
		FROM event_attendances a
		JOIN events e ON e.id = a.event_id
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY a.member_id, e.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttendanceRows(rows)
}

func queryCreateTemplate(ctx context.Context, db executor, t *model.EventTemplate) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO event_templates (
			type, unit, capacity, cost, penalty, military, overnight,
			quantity, title, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		string(t.Type),
		string(t.Unit),
		t.Capacity,
		t.Cost,
		t.Penalty,
		t.Military,
		t.Overnight,
		t.Quantity,
		t.Title,
		t.Description,
	)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func queryGetTemplate(ctx context.Context, db executor, id int64) (*model.EventTemplate, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM event_templates
		WHERE id = $1`,
		id,
	)
	return scanTemplate(row)
}

func queryListTemplates(ctx context.Context, db executor) ([]*model.EventTemplate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM event_templates
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTemplates(rows)
}

func queryDeleteTemplate(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM event_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryAddModerator(ctx context.Context, db executor, m *model.EventModerator) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO event_moderators (guild_id, role_id, channel_id, member_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, member_id) DO UPDATE SET
			role_id = EXCLUDED.role_id,
			channel_id = EXCLUDED.channel_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		m.GuildID,
		nullID(m.RoleID),
		nullID(m.ChannelID),
		m.MemberID,
	)
	return row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func queryRemoveModerator(ctx context.Context, db executor, guildID, memberID int64) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM event_moderators
		WHERE guild_id = $1 AND member_id = $2`,
		guildID, memberID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryGetModerator(ctx context.Context, db executor, guildID, memberID int64) (*model.EventModerator, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, guild_id, role_id, channel_id, member_id, created_at, updated_at
		FROM event_moderators
		WHERE guild_id = $1 AND member_id = $2`,
		guildID, memberID,
	)
	return scanModerator(row)
}

func queryListModerators(ctx context.Context, db executor, guildID int64) ([]*model.EventModerator, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, guild_id, role_id, channel_id, member_id, created_at, updated_at
		FROM event_moderators
		WHERE guild_id = $1
		ORDER BY id`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanModerators(rows)
}

func queryAddChannel(ctx context.Context, db executor, c *model.EventChannel) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO event_channels (guild_id, role_id, channel_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, channel_id) DO UPDATE SET
			role_id = EXCLUDED.role_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		c.GuildID,
		nullID(c.RoleID),
		c.ChannelID,
	)
	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func queryRemoveChannel(ctx context.Context, db executor, guildID, channelID int64) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM event_channels
		WHERE guild_id = $1 AND channel_id = $2`,
		guildID, channelID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryGetChannel(ctx context.Context, db executor, guildID, channelID int64) (*model.EventChannel, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, guild_id, role_id, channel_id, created_at, updated_at
		FROM event_channels
		WHERE guild_id = $1 AND channel_id = $2`,
		guildID, channelID,
	)
	return scanChannel(row)
}

func queryListChannels(ctx context.Context, db executor, guildID int64) ([]*model.EventChannel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, guild_id, role_id, channel_id, created_at, updated_at
		FROM event_channels
		WHERE guild_id = $1
		ORDER BY id`,
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChannels(rows)
}
