package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/stats"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export attendance statistics as CSV",
	GroupID: "reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := exportFilter(cmd)
		if err != nil {
			return err
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		report, err := stats.Aggregate(context.Background(), svc, filter)
		if err != nil {
			return err
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if jsonOutput {
			printJSON(report)
			return nil
		}
		return report.WriteCSV(out)
	},
}

func exportFilter(cmd *cobra.Command) (model.StatsFilter, error) {
	var filter model.StatsFilter

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("bad --from date %q, want YYYY-MM-DD", v)
		}
		filter.From = &t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("bad --to date %q, want YYYY-MM-DD", v)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	filter.EventMin, _ = cmd.Flags().GetInt64("event-min")
	filter.EventMax, _ = cmd.Flags().GetInt64("event-max")
	filter.EventIDs, _ = cmd.Flags().GetInt64Slice("event")
	filter.MemberID, _ = cmd.Flags().GetInt64("member")

	if (filter.EventMin != 0 || filter.EventMax != 0) && len(filter.EventIDs) > 0 {
		return filter, fmt.Errorf("--event and --event-min/--event-max are mutually exclusive")
	}
	return filter, nil
}

func initExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int64("event-min", 0, "first event id of a range")
	cmd.Flags().Int64("event-max", 0, "last event id of a range")
	cmd.Flags().Int64Slice("event", nil, "restrict to specific event ids (repeatable)")
	cmd.Flags().Int64("member", 0, "restrict to one member id")
	cmd.Flags().String("out", "", "write CSV to a file instead of stdout")
}

func init() {
	initExportFlags(exportCmd)
}
