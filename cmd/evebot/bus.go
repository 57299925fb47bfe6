package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/events"
)

var busCmd = &cobra.Command{
	Use:     "bus [topic]",
	Short:   "Tail the event bus",
	Long:    "Subscribe to NATS and print published bot events as JSON lines. Defaults to all evebot topics.",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		if natsURL == "" {
			natsURL = os.Getenv("EVEBOT_NATS_URL")
		}
		if natsURL == "" {
			return fmt.Errorf("EVEBOT_NATS_URL (or --nats-url) is required")
		}

		topic := "evebot.>"
		if len(args) == 1 {
			topic = args[0]
		}

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		msgs, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(os.Stderr, "listening on %s\n", topic)
		for {
			select {
			case <-ctx.Done():
				return nil
			case data, ok := <-msgs:
				if !ok {
					return nil
				}
				fmt.Println(string(data))
			}
		}
	},
}

func init() {
	busCmd.Flags().String("nats-url", "", "NATS server URL")
}
