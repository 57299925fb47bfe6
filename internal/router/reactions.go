package router

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/clanhall/evebot/internal/model"
)

// Table maps reaction emojis to their ledger meaning. A guild can
// override the built-in mapping with a TOML file.
type Table struct {
	attendance map[string]model.AttendanceType
	flags      map[string]model.EventFlag
}

// DefaultTable returns the built-in emoji mapping.
func DefaultTable() *Table {
	return &Table{
		attendance: map[string]model.AttendanceType{
			"✅":     model.AttendanceFull,    // white check mark
			"⏲️": model.AttendancePartial, // timer clock
		},
		flags: map[string]model.EventFlag{
			"⚔️": model.FlagMilitary,  // crossed swords
			"\U0001f303":   model.FlagOvernight, // night with stars
		},
	}
}

// tableFile is the TOML shape of a reaction override file.
type tableFile struct {
	Attendance map[string]string `toml:"attendance"`
	Flags      map[string]string `toml:"flags"`
}

// LoadTable reads an emoji mapping from a TOML file. The file replaces
// the built-in table entirely, so it must cover every classification
// and flag it wants to keep.
func LoadTable(path string) (*Table, error) {
	var f tableFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode reactions file: %w", err)
	}

	t := &Table{
		attendance: make(map[string]model.AttendanceType, len(f.Attendance)),
		flags:      make(map[string]model.EventFlag, len(f.Flags)),
	}
	for emoji, name := range f.Attendance {
		at := model.AttendanceType(name)
		if !at.IsValid() || at == model.AttendanceAbsent {
			return nil, fmt.Errorf("reactions file: %q maps to invalid attendance type %q", emoji, name)
		}
		t.attendance[emoji] = at
	}
	for emoji, name := range f.Flags {
		fl := model.EventFlag(name)
		if !fl.IsValid() {
			return nil, fmt.Errorf("reactions file: %q maps to invalid flag %q", emoji, name)
		}
		t.flags[emoji] = fl
	}
	if len(t.attendance) == 0 {
		return nil, fmt.Errorf("reactions file: no attendance emojis defined")
	}
	return t, nil
}

// Attendance resolves an emoji to an attendance classification.
func (t *Table) Attendance(emoji string) (model.AttendanceType, bool) {
	at, ok := t.attendance[emoji]
	return at, ok
}

// Flag resolves an emoji to an event modifier flag.
func (t *Table) Flag(emoji string) (model.EventFlag, bool) {
	f, ok := t.flags[emoji]
	return f, ok
}

// Known reports whether the emoji has any assigned meaning.
func (t *Table) Known(emoji string) bool {
	if _, ok := t.attendance[emoji]; ok {
		return true
	}
	_, ok := t.flags[emoji]
	return ok
}

// AttendanceEmojis returns every attendance emoji in the table.
func (t *Table) AttendanceEmojis() []string {
	out := make([]string, 0, len(t.attendance))
	for emoji := range t.attendance {
		out = append(out, emoji)
	}
	return out
}

// Emojis returns every emoji in the table, attendance first. The
// gateway seeds new event messages with these so members can tap
// instead of hunting the picker.
func (t *Table) Emojis() []string {
	out := t.AttendanceEmojis()
	for emoji := range t.flags {
		out = append(out, emoji)
	}
	return out
}
