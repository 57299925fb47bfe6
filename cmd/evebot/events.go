package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/model"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "List recorded events",
	GroupID: "reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter model.EventFilter
		filter.GuildID, _ = cmd.Flags().GetInt64("guild")
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		filter.Offset, _ = cmd.Flags().GetInt("offset")
		filter.IncludeDeleted, _ = cmd.Flags().GetBool("deleted")
		if statuses, _ := cmd.Flags().GetStringSlice("status"); len(statuses) > 0 {
			for _, s := range statuses {
				filter.Status = append(filter.Status, model.EventStatus(s))
			}
		}
		if types, _ := cmd.Flags().GetStringSlice("type"); len(types) > 0 {
			for _, t := range types {
				filter.Type = append(filter.Type, model.EventType(t))
			}
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		list, err := svc.ListEvents(context.Background(), filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(list)
			return nil
		}
		printEventTable(list)
		return nil
	},
}

func init() {
	eventsCmd.Flags().Int64("guild", 0, "restrict to one guild id")
	eventsCmd.Flags().StringSlice("status", nil, "filter by status (PENDING, STARTED, FINISHED, CANCELED)")
	eventsCmd.Flags().StringSlice("type", nil, "filter by event type")
	eventsCmd.Flags().Bool("deleted", false, "include deleted events")
	eventsCmd.Flags().Int("limit", 50, "maximum events to list")
	eventsCmd.Flags().Int("offset", 0, "events to skip")
}
