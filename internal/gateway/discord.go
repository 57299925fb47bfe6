// Package gateway connects the event service to Discord: it owns the
// bot session, renders events as embeds, registers the slash commands,
// and feeds message reactions into the router.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/clanhall/evebot/internal/model"
	"github.com/clanhall/evebot/internal/router"
	"github.com/clanhall/evebot/internal/service"
)

// Gateway is the Discord-facing surface of the bot.
type Gateway struct {
	session *discordgo.Session
	svc     *service.EventService
	router  *router.Router
	logger  *slog.Logger

	guildID    int64
	syncGlobal bool
	registered []*discordgo.ApplicationCommand
}

// Options configures a Gateway.
type Options struct {
	// GuildID restricts command registration to one guild. Zero with
	// SyncGlobal false registers nothing until a guild is configured.
	GuildID int64
	// SyncGlobal registers commands globally instead of per guild.
	SyncGlobal bool
	// Table overrides the reaction emoji mapping.
	Table *router.Table
}

// New creates a Gateway and its reaction router. The session is not
// opened until Start.
func New(token string, svc *service.EventService, opts Options, logger *slog.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		session:    session,
		svc:        svc,
		logger:     logger,
		guildID:    opts.GuildID,
		syncGlobal: opts.SyncGlobal,
	}
	g.router = router.New(svc, g, opts.Table, logger)

	session.AddHandler(g.onReady)
	session.AddHandler(g.onInteraction)
	session.AddHandler(g.onReactionAdd)
	session.AddHandler(g.onReactionRemove)

	return g, nil
}

// Start opens the gateway connection and registers slash commands.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	guildID := ""
	if !g.syncGlobal {
		if g.guildID == 0 {
			g.logger.Warn("no guild configured and global sync disabled; commands not registered")
			return nil
		}
		guildID = formatSnowflake(g.guildID)
	}

	for _, cmd := range commandDefinitions() {
		created, err := g.session.ApplicationCommandCreate(g.session.State.User.ID, guildID, cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		g.registered = append(g.registered, created)
	}
	g.logger.Info("gateway started", "commands", len(g.registered), "global", g.syncGlobal)
	return nil
}

// Stop unregisters commands and closes the session.
func (g *Gateway) Stop() error {
	guildID := ""
	if !g.syncGlobal && g.guildID != 0 {
		guildID = formatSnowflake(g.guildID)
	}
	for _, cmd := range g.registered {
		if err := g.session.ApplicationCommandDelete(g.session.State.User.ID, guildID, cmd.ID); err != nil {
			g.logger.Warn("failed to unregister command", "command", cmd.Name, "error", err)
		}
	}
	return g.session.Close()
}

// RemoveReaction implements router.Messenger.
func (g *Gateway) RemoveReaction(ctx context.Context, channelID, messageID, memberID int64, emoji string) error {
	return g.session.MessageReactionRemove(
		formatSnowflake(channelID),
		formatSnowflake(messageID),
		emoji,
		formatSnowflake(memberID),
	)
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.logger.Info("discord session ready", "user", r.User.Username)
}

func (g *Gateway) onReactionAdd(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
	if m.UserID == s.State.User.ID || reactorIsBot(m.Member) {
		return
	}
	reaction, err := g.toReaction(m.MessageReaction, m.Member)
	if err != nil {
		g.logger.Warn("ignoring malformed reaction", "error", err)
		return
	}
	if err := g.router.HandleAdd(context.Background(), reaction); err != nil {
		g.logger.Error("reaction add failed", "message_id", m.MessageID, "emoji", m.Emoji.Name, "error", err)
	}
}

func (g *Gateway) onReactionRemove(s *discordgo.Session, m *discordgo.MessageReactionRemove) {
	if m.UserID == s.State.User.ID || g.removerIsBot(s, m.GuildID, m.UserID) {
		return
	}
	reaction, err := g.toReaction(m.MessageReaction, nil)
	if err != nil {
		g.logger.Warn("ignoring malformed reaction", "error", err)
		return
	}
	if err := g.router.HandleRemove(context.Background(), reaction); err != nil {
		g.logger.Error("reaction remove failed", "message_id", m.MessageID, "emoji", m.Emoji.Name, "error", err)
	}
}

// toReaction converts a discord reaction payload into the router's
// numeric form. The guild member payload is only present on adds.
func (g *Gateway) toReaction(m *discordgo.MessageReaction, member *discordgo.Member) (router.Reaction, error) {
	guildID, err := parseSnowflake(m.GuildID)
	if err != nil {
		return router.Reaction{}, fmt.Errorf("guild id: %w", err)
	}
	channelID, err := parseSnowflake(m.ChannelID)
	if err != nil {
		return router.Reaction{}, fmt.Errorf("channel id: %w", err)
	}
	messageID, err := parseSnowflake(m.MessageID)
	if err != nil {
		return router.Reaction{}, fmt.Errorf("message id: %w", err)
	}
	userID, err := parseSnowflake(m.UserID)
	if err != nil {
		return router.Reaction{}, fmt.Errorf("user id: %w", err)
	}

	who := model.Member{ID: userID}
	if member != nil && member.User != nil {
		who.Name = member.User.Username
		who.DisplayName = memberDisplayName(member)
	}

	return router.Reaction{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Member:    who,
		Emoji:     m.Emoji.Name,
	}, nil
}

// reactorIsBot reports whether an add payload's member is a bot
// account. Reactions from bots never touch the ledger.
func reactorIsBot(member *discordgo.Member) bool {
	return member != nil && member.User != nil && member.User.Bot
}

// removerIsBot resolves a removal's user, which carries no member
// payload, through the state cache and then the API. Unresolvable
// users count as humans; a stray bot removal is at worst a no-op.
func (g *Gateway) removerIsBot(s *discordgo.Session, guildID, userID string) bool {
	if member, err := s.State.Member(guildID, userID); err == nil {
		return reactorIsBot(member)
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return false
	}
	return reactorIsBot(member)
}

// memberDisplayName prefers the guild nickname, then the global
// display name, then the username.
func memberDisplayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		if m.User.GlobalName != "" {
			return m.User.GlobalName
		}
		return m.User.Username
	}
	return ""
}

func parseSnowflake(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty snowflake")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}
