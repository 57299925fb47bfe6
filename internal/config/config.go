package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL  string // EVEBOT_DATABASE_URL (required)
	DiscordToken string // EVEBOT_DISCORD_TOKEN (required)
	NATSURL      string // EVEBOT_NATS_URL (optional, empty = no events)

	GuildID    int64   // EVEBOT_GUILD_ID (optional; restricts command sync to one guild)
	OwnerIDs   []int64 // EVEBOT_OWNER_IDS (comma-separated; always authorized)
	SyncGlobal bool    // EVEBOT_SYNC_GLOBAL (register commands globally instead of per guild)

	// ReactionsFile overrides the built-in reaction emoji table (TOML).
	ReactionsFile string // EVEBOT_REACTIONS_FILE

	// Statistics export settings
	StatsInterval   time.Duration // EVEBOT_STATS_INTERVAL (default 0 = disabled)
	StatsS3Bucket   string        // EVEBOT_STATS_S3_BUCKET (enables S3 when set)
	StatsS3Endpoint string        // EVEBOT_STATS_S3_ENDPOINT (custom endpoint for MinIO)
	StatsS3Region   string        // EVEBOT_STATS_S3_REGION (default "us-east-1")
	StatsS3Key      string        // EVEBOT_STATS_S3_KEY (default "evebot/statistics.csv")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:     os.Getenv("EVEBOT_DATABASE_URL"),
		DiscordToken:    os.Getenv("EVEBOT_DISCORD_TOKEN"),
		NATSURL:         os.Getenv("EVEBOT_NATS_URL"),
		ReactionsFile:   os.Getenv("EVEBOT_REACTIONS_FILE"),
		StatsS3Bucket:   os.Getenv("EVEBOT_STATS_S3_BUCKET"),
		StatsS3Endpoint: os.Getenv("EVEBOT_STATS_S3_ENDPOINT"),
		StatsS3Region:   envOrDefault("EVEBOT_STATS_S3_REGION", "us-east-1"),
		StatsS3Key:      envOrDefault("EVEBOT_STATS_S3_KEY", "evebot/statistics.csv"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("EVEBOT_DATABASE_URL is required")
	}
	if c.DiscordToken == "" {
		return nil, fmt.Errorf("EVEBOT_DISCORD_TOKEN is required")
	}

	if v := os.Getenv("EVEBOT_GUILD_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("EVEBOT_GUILD_ID: %w", err)
		}
		c.GuildID = id
	}

	if v := os.Getenv("EVEBOT_OWNER_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("EVEBOT_OWNER_IDS: %w", err)
			}
			c.OwnerIDs = append(c.OwnerIDs, id)
		}
	}

	if v := os.Getenv("EVEBOT_SYNC_GLOBAL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("EVEBOT_SYNC_GLOBAL: %w", err)
		}
		c.SyncGlobal = b
	}

	if v := os.Getenv("EVEBOT_STATS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("EVEBOT_STATS_INTERVAL: %w", err)
		}
		c.StatsInterval = d
	}

	return c, nil
}

// IsOwner reports whether the member is a configured bot owner.
func (c *Config) IsOwner(memberID int64) bool {
	for _, id := range c.OwnerIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
