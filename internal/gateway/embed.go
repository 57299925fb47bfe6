package gateway

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/clanhall/evebot/internal/model"
)

const (
	colorRunning  = 0x3fb950 // green
	colorFinished = 0x58a6ff // blue
	colorCanceled = 0x8b949e // gray
)

// eventEmbed renders a running (or pending/canceled) event.
func eventEmbed(event *model.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("#%d %s", event.ID, event.Title),
		Description: event.Description,
		Color:       statusColor(event.Status),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: event.Type.String(), Inline: true},
			{Name: "Organizer", Value: memberMention(event.MemberID), Inline: true},
			{Name: "Status", Value: event.Status.String(), Inline: true},
			{Name: "Capacity", Value: formatAmount(event.Capacity, event.Unit), Inline: true},
			{Name: "Cost", Value: fmt.Sprintf("%d", event.Cost), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "React ✅ for full or ⏲️ for partial attendance.",
		},
	}
	if flags := flagLine(event); flags != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Modifiers", Value: flags, Inline: true,
		})
	}
	return embed
}

// finishedEmbed renders the settled event with the reward breakdown.
func finishedEmbed(event *model.Event, rows []*model.EventAttendance) *discordgo.MessageEmbed {
	embed := eventEmbed(event)
	embed.Footer = nil
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Quantity", Value: formatAmount(event.Quantity, event.Unit), Inline: true,
	})
	if line := rewardLines(rows); line != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Rewards", Value: line,
		})
	}
	return embed
}

// rewardLines lists paid attendees, highest reward first. Absent
// members carry no payout and are skipped.
func rewardLines(rows []*model.EventAttendance) string {
	paid := make([]*model.EventAttendance, 0, len(rows))
	for _, row := range rows {
		if row.Type == model.AttendanceAbsent {
			continue
		}
		paid = append(paid, row)
	}
	sort.Slice(paid, func(i, j int) bool {
		if paid[i].Reward != paid[j].Reward {
			return paid[i].Reward > paid[j].Reward
		}
		return paid[i].MemberID < paid[j].MemberID
	})

	var b strings.Builder
	for _, row := range paid {
		fmt.Fprintf(&b, "%s — %d", memberMention(row.MemberID), row.Reward)
		if row.Type == model.AttendancePartial {
			b.WriteString(" (partial)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func flagLine(event *model.Event) string {
	var flags []string
	if event.IsMilitary {
		flags = append(flags, "⚔️ military")
	}
	if event.IsOvernight {
		flags = append(flags, "\U0001f303 overnight")
	}
	return strings.Join(flags, ", ")
}

func statusColor(status model.EventStatus) int {
	switch status {
	case model.StatusFinished:
		return colorFinished
	case model.StatusCanceled, model.StatusDeleted:
		return colorCanceled
	}
	return colorRunning
}

// formatAmount renders a capacity or quantity with its unit.
func formatAmount(n int, unit model.CapacityUnit) string {
	switch unit {
	case model.UnitTime:
		return fmt.Sprintf("%d min", n)
	case model.UnitThing:
		return fmt.Sprintf("%d kills", n)
	case model.UnitVisit:
		return fmt.Sprintf("%d visits", n)
	}
	return fmt.Sprintf("%d", n)
}

func memberMention(id int64) string {
	return fmt.Sprintf("<@%d>", id)
}
