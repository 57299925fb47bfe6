package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/model"
)

var channelCmd = &cobra.Command{
	Use:     "channel",
	Short:   "Manage the event channel registry",
	GroupID: "registry",
}

var channelAddCmd = &cobra.Command{
	Use:   "add <guild-id> <channel-id>",
	Short: "Register a channel as hosting events",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guildID, channelID, err := parseIDPair(args[0], args[1])
		if err != nil {
			return err
		}
		roleID, _ := cmd.Flags().GetInt64("role")

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		ch := &model.EventChannel{
			GuildID:   guildID,
			ChannelID: channelID,
			RoleID:    roleID,
		}
		if err := svc.AddChannel(context.Background(), ch); err != nil {
			return err
		}
		fmt.Printf("Registered channel %d in guild %d\n", channelID, guildID)
		return nil
	},
}

var channelListCmd = &cobra.Command{
	Use:   "list <guild-id>",
	Short: "List event channels of a guild",
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

		channels, err := svc.ListChannels(context.Background(), guildID)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(channels)
			return nil
		}
		printChannelTable(channels)
		return nil
	},
}

var channelDelCmd = &cobra.Command{
	Use:   "del <guild-id> <channel-id>",
	Short: "Remove a channel from the event registry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guildID, channelID, err := parseIDPair(args[0], args[1])
		if err != nil {
			return err
		}

		svc, closeFn, err := newService(newLogger())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.RemoveChannel(context.Background(), guildID, channelID); err != nil {
			return err
		}
		fmt.Printf("Removed channel %d from guild %d\n", channelID, guildID)
		return nil
	},
}

func init() {
	channelAddCmd.Flags().Int64("role", 0, "role allowed to host in this channel (optional)")

	channelCmd.AddCommand(channelAddCmd)
	channelCmd.AddCommand(channelListCmd)
	channelCmd.AddCommand(channelDelCmd)
}
