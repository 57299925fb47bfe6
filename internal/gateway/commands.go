package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/service"
	"github.com/clanhall/evebot/internal/stats"
)

// commandDefinitions returns the slash command tree the bot registers.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "event",
			Description: "Manage attendance events",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start an event from a template",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "template",
							Description:  "Event template",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "finish",
					Description: "Finish an event and pay out rewards",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "event",
							Description: "Event id",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "quantity",
							Description: "Realized quantity (defaults to the template's)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Cancel a running event",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "event",
							Description: "Event id",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete an event from the record",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "event",
							Description: "Event id",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Record a member's attendance by hand",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "event",
							Description: "Event id",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "Member to record",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Attendance classification",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "full", Value: string(model.AttendanceFull)},
								{Name: "partial", Value: string(model.AttendancePartial)},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "del",
					Description: "Withdraw a member's attendance",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "event",
							Description: "Event id",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "Member to withdraw",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "statistic",
					Description: "Export attendance statistics as CSV",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "events",
							Description: "Event selector: a range like 3-7 or a list like 3,5,7",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "from",
							Description: "Start date (YYYY-MM-DD)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "to",
							Description: "End date (YYYY-MM-DD)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "Restrict to one member",
						},
					},
				},
			},
		},
	}
}

func (g *Gateway) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		g.dispatchCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		g.handleAutocomplete(s, i)
	}
}

func (g *Gateway) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "event" || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	ctx := context.Background()
	var err error
	switch sub.Name {
	case "start":
		err = g.handleStart(ctx, s, i, sub.Options)
	case "finish":
		err = g.handleFinish(ctx, s, i, sub.Options)
	case "cancel":
		err = g.handleCancel(ctx, s, i, sub.Options)
	case "delete":
		err = g.handleDelete(ctx, s, i, sub.Options)
	case "add":
		err = g.handleAdd(ctx, s, i, sub.Options)
	case "del":
		err = g.handleDel(ctx, s, i, sub.Options)
	case "statistic":
		err = g.handleStatistic(ctx, s, i, sub.Options)
	}
	if err != nil {
		g.logger.Error("command failed", "command", sub.Name, "error", err)
		g.respond(s, i, userFacing(err), true)
	}
}

// userFacing maps service errors to short replies.
func userFacing(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "Not found."
	case errors.Is(err, service.ErrUnauthorized):
		return "You are not allowed to do that."
	case errors.Is(err, service.ErrInvalidState):
		return "The event is not in a state that allows this."
	case errors.Is(err, service.ErrQuantityRequired):
		return "This event has no default quantity; pass one with the quantity option."
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "Something went wrong."
}

func (g *Gateway) handleStart(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	guildID, channelID, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	ok, err := g.svc.IsEventChannel(ctx, guildID, channelID)
	if err != nil {
		return err
	}
	if !ok {
		g.respond(s, i, "Events cannot be hosted in this channel.", true)
		return nil
	}

	templateID := optInt(opts, "template")
	event, err := g.svc.CreateEvent(ctx, guildID, channelID, actor, templateID)
	if err != nil {
		return err
	}
	event, err = g.svc.StartEvent(ctx, event.ID, actor)
	if err != nil {
		return err
	}

	msg, err := s.ChannelMessageSendEmbed(formatSnowflake(channelID), eventEmbed(event))
	if err != nil {
		return fmt.Errorf("post event message: %w", err)
	}
	messageID, err := parseSnowflake(msg.ID)
	if err != nil {
		return err
	}
	if err := g.svc.SetEventMessage(ctx, event.ID, messageID); err != nil {
		return err
	}

	// Seed the reactions so members can tap instead of hunting the picker.
	for _, emoji := range g.router.Table().Emojis() {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			g.logger.Warn("failed to seed reaction", "emoji", emoji, "error", err)
		}
	}

	g.respond(s, i, fmt.Sprintf("Event #%d started.", event.ID), true)
	return nil
}

func (g *Gateway) handleFinish(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	_, _, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	eventID := optInt(opts, "event")
	quantity := int(optInt(opts, "quantity"))

	event, err := g.svc.FinishEvent(ctx, eventID, actor, quantity)
	if err != nil {
		return err
	}

	rows, err := g.svc.ListAttendance(ctx, event.ID)
	if err != nil {
		return err
	}
	g.updateEventMessage(s, event, rows)
	g.respond(s, i, fmt.Sprintf("Event #%d finished; %d members rewarded.", event.ID, len(rows)), false)
	return nil
}

func (g *Gateway) handleCancel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	_, _, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	event, err := g.svc.CancelEvent(ctx, optInt(opts, "event"), actor)
	if err != nil {
		return err
	}
	g.updateEventMessage(s, event, nil)
	g.respond(s, i, fmt.Sprintf("Event #%d canceled.", event.ID), false)
	return nil
}

func (g *Gateway) handleDelete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	_, _, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	eventID := optInt(opts, "event")
	event, err := g.svc.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := g.svc.DeleteEvent(ctx, eventID, actor); err != nil {
		return err
	}

	// The rendered message goes with the record.
	if event.MessageID != 0 {
		if err := s.ChannelMessageDelete(formatSnowflake(event.ChannelID), formatSnowflake(event.MessageID)); err != nil {
			g.logger.Warn("failed to delete event message", "event_id", eventID, "error", err)
		}
	}
	g.respond(s, i, fmt.Sprintf("Event #%d deleted.", eventID), true)
	return nil
}

func (g *Gateway) handleAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	guildID, _, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	// Manual ledger edits are a moderator surface.
	ok, err := g.svc.IsModerator(ctx, guildID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrUnauthorized
	}

	target, err := optMember(s, i, opts, "member")
	if err != nil {
		return err
	}
	atype := model.AttendanceType(optString(opts, "type"))

	// Moderator edits bypass the terminal gate; on a finished event the
	// row's reward is recomputed from the settled parameters.
	att, err := g.svc.AdjustAttendance(ctx, optInt(opts, "event"), target, atype)
	if err != nil {
		return err
	}
	reply := fmt.Sprintf("Recorded %s as %s.", target.DisplayName, atype)
	if att.Reward > 0 {
		reply = fmt.Sprintf("Recorded %s as %s with reward %d.", target.DisplayName, atype, att.Reward)
	}
	g.respond(s, i, reply, true)
	return nil
}

func (g *Gateway) handleDel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	guildID, _, actor, err := interactionScope(i)
	if err != nil {
		return err
	}

	ok, err := g.svc.IsModerator(ctx, guildID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrUnauthorized
	}

	target, err := optMember(s, i, opts, "member")
	if err != nil {
		return err
	}
	if err := g.svc.RemoveAttendance(ctx, optInt(opts, "event"), target.ID); err != nil {
		return err
	}
	g.respond(s, i, fmt.Sprintf("Withdrew %s.", target.DisplayName), true)
	return nil
}

func (g *Gateway) handleStatistic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	filter, err := buildStatsFilter(opts)
	if err != nil {
		g.respond(s, i, err.Error(), true)
		return nil
	}
	if u := optUser(opts, "member"); u != "" {
		memberID, err := parseSnowflake(u)
		if err != nil {
			return err
		}
		filter.MemberID = memberID
	}

	report, err := stats.Aggregate(ctx, g.svc, filter)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		return err
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Statistics for %d members.", len(report.Members)),
			Files: []*discordgo.File{
				{
					Name:        report.ID + ".csv",
					ContentType: "text/csv",
					Reader:      &buf,
				},
			},
		},
	})
}

// handleAutocomplete serves template suggestions for /event start.
func (g *Gateway) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	templates, err := g.svc.ListTemplates(context.Background())
	if err != nil {
		g.logger.Warn("template autocomplete failed", "error", err)
		return
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(templates))
	for _, tpl := range templates {
		if len(choices) == 25 {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("#%d %s (%s)", tpl.ID, tpl.Title, tpl.Type),
			Value: tpl.ID,
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		g.logger.Warn("autocomplete respond failed", "error", err)
	}
}

// buildStatsFilter parses the statistic command's selector options.
func buildStatsFilter(opts []*discordgo.ApplicationCommandInteractionDataOption) (model.StatsFilter, error) {
	var filter model.StatsFilter

	if sel := optString(opts, "events"); sel != "" {
		f, err := parseEventSelector(sel)
		if err != nil {
			return filter, err
		}
		filter = f
	}
	if from := optString(opts, "from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("bad from date %q, want YYYY-MM-DD", from)
		}
		filter.From = &t
	}
	if to := optString(opts, "to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("bad to date %q, want YYYY-MM-DD", to)
		}
		// Include the whole end day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	return filter, nil
}

// parseEventSelector turns "3-7" into an id range and "3,5,7" (or a
// single "5") into an id list.
func parseEventSelector(sel string) (model.StatsFilter, error) {
	var filter model.StatsFilter

	if lo, hi, ok := strings.Cut(sel, "-"); ok {
		min, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return filter, fmt.Errorf("bad event range %q", sel)
		}
		max, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return filter, fmt.Errorf("bad event range %q", sel)
		}
		if min > max {
			return filter, fmt.Errorf("bad event range %q: start after end", sel)
		}
		filter.EventMin = min
		filter.EventMax = max
		return filter, nil
	}

	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("bad event id %q", part)
		}
		filter.EventIDs = append(filter.EventIDs, id)
	}
	if len(filter.EventIDs) == 0 {
		return filter, fmt.Errorf("empty event selector")
	}
	return filter, nil
}

// updateEventMessage re-renders the event embed after a lifecycle
// transition. Best effort; the ledger is already settled.
func (g *Gateway) updateEventMessage(s *discordgo.Session, event *model.Event, rows []*model.EventAttendance) {
	if event.MessageID == 0 {
		return
	}
	embed := eventEmbed(event)
	if event.Status == model.StatusFinished {
		embed = finishedEmbed(event, rows)
	}
	_, err := s.ChannelMessageEditEmbed(
		formatSnowflake(event.ChannelID),
		formatSnowflake(event.MessageID),
		embed,
	)
	if err != nil {
		g.logger.Warn("failed to update event message", "event_id", event.ID, "error", err)
	}
}

// respond sends an interaction reply. Errors are logged, not returned;
// a failed reply must not fail the already-applied operation.
func (g *Gateway) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		g.logger.Warn("interaction respond failed", "error", err)
	}
}

// interactionScope extracts the guild, channel, and acting member.
func interactionScope(i *discordgo.InteractionCreate) (guildID, channelID int64, actor model.Member, err error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, model.Member{}, fmt.Errorf("interaction outside a guild")
	}
	guildID, err = parseSnowflake(i.GuildID)
	if err != nil {
		return 0, 0, model.Member{}, fmt.Errorf("guild id: %w", err)
	}
	channelID, err = parseSnowflake(i.ChannelID)
	if err != nil {
		return 0, 0, model.Member{}, fmt.Errorf("channel id: %w", err)
	}
	memberID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		return 0, 0, model.Member{}, fmt.Errorf("member id: %w", err)
	}
	actor = model.Member{
		ID:          memberID,
		Name:        i.Member.User.Username,
		DisplayName: memberDisplayName(i.Member),
	}
	return guildID, channelID, actor, nil
}

// Option helpers. Missing options yield zero values.

func optInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, o := range opts {
		if o.Name == name {
			return o.IntValue()
		}
	}
	return 0
}

func optString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

// optUser returns the raw user-id string of a user option.
func optUser(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			if v, ok := o.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}

// optMember resolves a user option to a model.Member using the
// interaction's resolved data.
func optMember(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (model.Member, error) {
	raw := optUser(opts, name)
	if raw == "" {
		return model.Member{}, fmt.Errorf("missing %s option", name)
	}
	id, err := parseSnowflake(raw)
	if err != nil {
		return model.Member{}, err
	}

	member := model.Member{ID: id}
	data := i.ApplicationCommandData()
	if data.Resolved != nil {
		if u, ok := data.Resolved.Users[raw]; ok {
			member.Name = u.Username
			member.DisplayName = u.Username
			if u.GlobalName != "" {
				member.DisplayName = u.GlobalName
			}
		}
		if m, ok := data.Resolved.Members[raw]; ok && m.Nick != "" {
			member.DisplayName = m.Nick
		}
	}
	return member, nil
}
