// Package stats aggregates finished-event attendance into per-member
// reports and exports them as CSV.
package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/clanhall/evebot/internal/idgen"
	"github.com/clanhall/evebot/internal/model"
)

// reportIDPrefix tags statistics reports on the bus and in object keys.
const reportIDPrefix = "rp-"

// columnTypes fixes the per-type column order in CSV output.
var columnTypes = []model.EventType{
	model.TypeChain, model.TypeOnce, model.TypeAwakened,
	model.TypeToi, model.TypeVeora, model.TypeSiege,
	model.TypeCluster, model.TypeClan, model.TypeAlliance,
}

// Source supplies the ledger rows a report aggregates.
type Source interface {
	ListAttendanceRows(ctx context.Context, filter model.StatsFilter) ([]*model.AttendanceRow, error)
}

// MemberStats is one member's aggregated attendance totals.
type MemberStats struct {
	MemberID    int64
	DisplayName string
	// Events is the number of finished events attended.
	Events int
	// ByType counts attended events per event type.
	ByType map[model.EventType]int
	// Quantity sums the realized quantities of attended events.
	Quantity int
	// Reward sums the payable rewards.
	Reward int
}

// Report is a per-member statistics aggregation over finished events.
type Report struct {
	ID          string
	GeneratedAt time.Time
	Members     []MemberStats
}

// Aggregate builds a report from the rows matching the filter. Members
// are ordered by total reward descending, ties by member id.
func Aggregate(ctx context.Context, src Source, filter model.StatsFilter) (*Report, error) {
	rows, err := src.ListAttendanceRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}

	byMember := make(map[int64]*MemberStats)
	for _, row := range rows {
		ms, ok := byMember[row.MemberID]
		if !ok {
			ms = &MemberStats{
				MemberID:    row.MemberID,
				DisplayName: row.MemberDisplayName,
				ByType:      make(map[model.EventType]int),
			}
			byMember[row.MemberID] = ms
		}
		ms.Events++
		ms.ByType[row.EventType]++
		ms.Quantity += row.Quantity
		ms.Reward += row.Reward
		if ms.DisplayName == "" {
			ms.DisplayName = row.MemberDisplayName
		}
	}

	members := make([]MemberStats, 0, len(byMember))
	for _, ms := range byMember {
		members = append(members, *ms)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Reward != members[j].Reward {
			return members[i].Reward > members[j].Reward
		}
		return members[i].MemberID < members[j].MemberID
	})

	id, err := idgen.GenerateWithPrefix(reportIDPrefix)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		Members:     members,
	}, nil
}

// WriteCSV renders the report with one row per member. The per-type
// columns cover every event type so consumers get a stable schema.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"member_id", "member", "events"}
	for _, t := range columnTypes {
		header = append(header, t.String())
	}
	header = append(header, "quantity", "reward")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, ms := range r.Members {
		rec := []string{
			strconv.FormatInt(ms.MemberID, 10),
			ms.DisplayName,
			strconv.Itoa(ms.Events),
		}
		for _, t := range columnTypes {
			rec = append(rec, strconv.Itoa(ms.ByType[t]))
		}
		rec = append(rec, strconv.Itoa(ms.Quantity), strconv.Itoa(ms.Reward))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
