package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/clanhall/evebot/internal/model"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTemplateTable(templates []*model.EventTemplate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tUNIT\tCAPACITY\tCOST\tPENALTY\tMILITARY\tOVERNIGHT\tQUANTITY\tTITLE")
	for _, t := range templates {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			t.ID, t.Type, t.Unit, t.Capacity, t.Cost, t.Penalty, t.Military, t.Overnight, t.Quantity, t.Title)
	}
	w.Flush()
	fmt.Printf("\n%d templates\n", len(templates))
}

func printEventTable(list []*model.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tQUANTITY\tORGANIZER\tTITLE\tUPDATED")
	for _, e := range list {
		title := e.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		organizer := e.MemberDisplayName
		if organizer == "" {
			organizer = fmt.Sprintf("%d", e.MemberID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, e.Status, e.Type, e.Quantity, organizer, title,
			e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\n%d events\n", len(list))
}

func printModeratorTable(mods []*model.EventModerator) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GUILD\tMEMBER\tROLE\tCHANNEL\tSINCE")
	for _, m := range mods {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			m.GuildID, m.MemberID, orDash(m.RoleID), orDash(m.ChannelID),
			m.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	fmt.Printf("\n%d moderators\n", len(mods))
}

func printChannelTable(channels []*model.EventChannel) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GUILD\tCHANNEL\tROLE\tSINCE")
	for _, c := range channels {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			c.GuildID, c.ChannelID, orDash(c.RoleID),
			c.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	fmt.Printf("\n%d channels\n", len(channels))
}

// orDash renders optional snowflakes; zero means unset.
func orDash(id int64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}
