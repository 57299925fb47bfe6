package postgres

import (
	"database/sql"

	"github.com/clanhall/evebot/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// nullID converts a zero snowflake to NULL so partial unique indexes on
// message_id behave and absent role/channel references stay unset.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// scanEvent scans a single row into a model.Event.
// The row must contain columns in the order defined by eventColumns.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		messageID   sql.NullInt64
		name        sql.NullString
		displayName sql.NullString
		description sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&e.GuildID,
		&e.ChannelID,
		&messageID,
		&e.MemberID,
		&name,
		&displayName,
		&e.Type,
		&e.Unit,
		&e.Capacity,
		&e.Cost,
		&e.Penalty,
		&e.Military,
		&e.Overnight,
		&e.Title,
		&description,
		&e.Quantity,
		&e.Status,
		&e.IsMilitary,
		&e.IsOvernight,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.MessageID = messageID.Int64
	e.MemberName = name.String
	e.MemberDisplayName = displayName.String
	e.Description = description.String

	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// scanAttendance scans a single row into a model.EventAttendance.
func scanAttendance(row scannable) (*model.EventAttendance, error) {
	var a model.EventAttendance
	var (
		name        sql.NullString
		displayName sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.EventID,
		&a.MemberID,
		&name,
		&displayName,
		&a.Type,
		&a.Reward,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.MemberName = name.String
	a.MemberDisplayName = displayName.String

	return &a, nil
}

func scanAttendances(rows *sql.Rows) ([]*model.EventAttendance, error) {
	var atts []*model.EventAttendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

func scanAttendanceRow(row scannable) (*model.AttendanceRow, error) {
	var r model.AttendanceRow
	var displayName sql.NullString

	err := row.Scan(
		&r.MemberID,
		&displayName,
		&r.EventID,
		&r.EventType,
		&r.Quantity,
		&r.Reward,
	)
	if err != nil {
		return nil, err
	}

	r.MemberDisplayName = displayName.String

	return &r, nil
}

func scanAttendanceRows(rows *sql.Rows) ([]*model.AttendanceRow, error) {
	var out []*model.AttendanceRow
	for rows.Next() {
		r, err := scanAttendanceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanTemplate scans a single row into a model.EventTemplate.
func scanTemplate(row scannable) (*model.EventTemplate, error) {
	var t model.EventTemplate
	var description sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.Unit,
		&t.Capacity,
		&t.Cost,
		&t.Penalty,
		&t.Military,
		&t.Overnight,
		&t.Quantity,
		&t.Title,
		&description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String

	return &t, nil
}

func scanTemplates(rows *sql.Rows) ([]*model.EventTemplate, error) {
	var tpls []*model.EventTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		tpls = append(tpls, t)
	}
	return tpls, rows.Err()
}

func scanModerator(row scannable) (*model.EventModerator, error) {
	var m model.EventModerator
	var (
		roleID    sql.NullInt64
		channelID sql.NullInt64
	)

	err := row.Scan(
		&m.ID,
		&m.GuildID,
		&roleID,
		&channelID,
		&m.MemberID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.RoleID = roleID.Int64
	m.ChannelID = channelID.Int64

	return &m, nil
}

func scanModerators(rows *sql.Rows) ([]*model.EventModerator, error) {
	var mods []*model.EventModerator
	for rows.Next() {
		m, err := scanModerator(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

func scanChannel(row scannable) (*model.EventChannel, error) {
	var c model.EventChannel
	var roleID sql.NullInt64

	err := row.Scan(
		&c.ID,
		&c.GuildID,
		&roleID,
		&c.ChannelID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.RoleID = roleID.Int64

	return &c, nil
}

func scanChannels(rows *sql.Rows) ([]*model.EventChannel, error) {
	var chans []*model.EventChannel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		chans = append(chans, c)
	}
	return chans, rows.Err()
}
