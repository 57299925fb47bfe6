package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/config"
	"github.com/clanhall/evebot/internal/events"
	"github.com/clanhall/evebot/internal/gateway"
	"github.com/clanhall/evebot/internal/router"
	"github.com/clanhall/evebot/internal/service"
	"github.com/clanhall/evebot/internal/stats"
	"github.com/clanhall/evebot/internal/store/postgres"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the Discord bot",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (EVEBOT_NATS_URL not set)")
		}

		svc := service.NewEventService(store, publisher, logger, cfg.OwnerIDs)

		table := router.DefaultTable()
		if cfg.ReactionsFile != "" {
			table, err = router.LoadTable(cfg.ReactionsFile)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			logger.Info("reaction table loaded", "path", cfg.ReactionsFile)
		}

		gw, err := gateway.New(cfg.DiscordToken, svc, gateway.Options{
			GuildID:    cfg.GuildID,
			SyncGlobal: cfg.SyncGlobal,
			Table:      table,
		}, logger)
		if err != nil {
			publisher.Close()
			store.Close()
			return err
		}

		ctx := context.Background()
		if err := gw.Start(ctx); err != nil {
			publisher.Close()
			store.Close()
			return err
		}

		// Periodic statistics export, when configured.
		var scheduler *stats.Scheduler
		if cfg.StatsInterval > 0 && cfg.StatsS3Bucket != "" {
			dest, err := stats.NewS3Destination(ctx, cfg.StatsS3Bucket, cfg.StatsS3Key, cfg.StatsS3Region, cfg.StatsS3Endpoint)
			if err != nil {
				logger.Error("failed to create S3 statistics destination", "err", err)
			} else {
				scheduler = stats.NewScheduler(svc, []stats.Destination{dest}, cfg.StatsInterval, logger)
				scheduler.Start()
				logger.Info("statistics scheduler started",
					"interval", cfg.StatsInterval,
					"bucket", cfg.StatsS3Bucket,
					"key", cfg.StatsS3Key,
				)
			}
		}

		logger.Info("evebot started", "guild_id", cfg.GuildID, "global_sync", cfg.SyncGlobal)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("statistics scheduler stopped")
		}

		if err := gw.Stop(); err != nil {
			logger.Error("error closing gateway", "err", err)
		}
		logger.Info("gateway stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
