package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/model"
)

var moderatorCmd = &cobra.Command{
	Use:     "moderator",
	Short:   "Manage the event moderator registry",
	GroupID: "registry",
}

var moderatorAddCmd = &cobra.Command{
	Use:   "add <guild-id> <member-id>",
	Short: "Register a member as event moderator",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guildID, memberID, err := parseIDPair(args[0], args[1])
		if err != nil {
			return err
		}
		roleID, _ := cmd.Flags().GetInt64("role")
		channelID, _ := cmd.Flags().GetInt64("channel")

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		mod := &model.EventModerator{
			GuildID:   guildID,
			MemberID:  memberID,
			RoleID:    roleID,
			ChannelID: channelID,
		}
		if err := svc.AddModerator(context.Background(), mod); err != nil {
			return err
		}
		fmt.Printf("Registered moderator %d in guild %d\n", memberID, guildID)
		return nil
	},
}

var moderatorListCmd = &cobra.Command{
	Use:   "list <guild-id>",
	Short: "List event moderators of a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		guildID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad guild id %q", args[0])
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		mods, err := svc.ListModerators(context.Background(), guildID)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(mods)
			return nil
		}
		printModeratorTable(mods)
		return nil
	},
}

var moderatorDelCmd = &cobra.Command{
	Use:   "del <guild-id> <member-id>",
	Short: "Remove a member from the moderator registry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guildID, memberID, err := parseIDPair(args[0], args[1])
		if err != nil {
			return err
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.RemoveModerator(context.Background(), guildID, memberID); err != nil {
			return err
		}
		fmt.Printf("Removed moderator %d from guild %d\n", memberID, guildID)
		return nil
	},
}

func parseIDPair(a, b string) (int64, int64, error) {
	first, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad id %q", a)
	}
	second, err := strconv.ParseInt(b, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad id %q", b)
	}
	return first, second, nil
}

func init() {
	moderatorAddCmd.Flags().Int64("role", 0, "role granting moderation (optional)")
	moderatorAddCmd.Flags().Int64("channel", 0, "restrict moderation to one channel (optional)")

	moderatorCmd.AddCommand(moderatorAddCmd)
	moderatorCmd.AddCommand(moderatorListCmd)
	moderatorCmd.AddCommand(moderatorDelCmd)
}
