package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/model"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Short:   "Manage event templates",
	GroupID: "registry",
}

var templateAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create an event template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		etype, _ := cmd.Flags().GetString("type")
		unit, _ := cmd.Flags().GetString("unit")
		capacity, _ := cmd.Flags().GetInt("capacity")
		cost, _ := cmd.Flags().GetInt("cost")
		penalty, _ := cmd.Flags().GetInt("penalty")
		military, _ := cmd.Flags().GetInt("military")
		overnight, _ := cmd.Flags().GetInt("overnight")
		quantity, _ := cmd.Flags().GetInt("quantity")
		description, _ := cmd.Flags().GetString("description")

		tpl := &model.EventTemplate{
			Type:        model.EventType(etype),
			Unit:        model.CapacityUnit(unit),
			Capacity:    capacity,
			Cost:        cost,
			Penalty:     penalty,
			Military:    military,
			Overnight:   overnight,
			Quantity:    quantity,
			Title:       args[0],
			Description: description,
		}
		if err := svc.CreateTemplate(context.Background(), tpl); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(tpl)
			return nil
		}
		fmt.Printf("Created template #%d %q\n", tpl.ID, tpl.Title)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List event templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		templates, err := svc.ListTemplates(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(templates)
			return nil
		}
		printTemplateTable(templates)
		return nil
	},
}

var templateDelCmd = &cobra.Command{
	Use:   "del <id>",
	Short: "Delete an event template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad template id %q", args[0])
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.DeleteTemplate(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted template #%d\n", id)
		return nil
	},
}

func init() {
	templateAddCmd.Flags().String("type", "", "event type (CHAIN, ONCE, AWAKENED, TOI, VEORA, SIEGE, CLUSTER, CLAN, ALLIANCE)")
	templateAddCmd.Flags().String("unit", "", "capacity unit (TIME, THING, VISIT)")
	templateAddCmd.Flags().Int("capacity", 0, "nominal capacity in units")
	templateAddCmd.Flags().Int("cost", 0, "reward cost per unit")
	templateAddCmd.Flags().Int("penalty", 100, "partial attendance percentage")
	templateAddCmd.Flags().Int("military", 0, "military bonus percentage")
	templateAddCmd.Flags().Int("overnight", 0, "overnight bonus percentage")
	templateAddCmd.Flags().Int("quantity", 0, "default realized quantity (0 = ask at finish)")
	templateAddCmd.Flags().String("description", "", "template description")
	templateAddCmd.MarkFlagRequired("type")
	templateAddCmd.MarkFlagRequired("unit")
	templateAddCmd.MarkFlagRequired("capacity")
	templateAddCmd.MarkFlagRequired("cost")

	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateDelCmd)
}
