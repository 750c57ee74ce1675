// Package config handles application configuration from environment variables.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN, required"`
	DatabasePath     string  `env:"DATABASE_PATH, default=./data/bot.db"`
	LogLevel         string  `env:"LOG_LEVEL, default=info"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS"`

	Feed     Feed
	Channels Channels

	// ItemEmoji decorates item lines, keyed by item ID.
	ItemEmoji map[string]string `env:"ITEM_EMOJI"`
	// ItemMentions lists who to ping when an item is in stock, keyed by item ID.
	ItemMentions map[string]string `env:"ITEM_MENTIONS"`
}

// Feed configures access to the game-state API.
type Feed struct {
	APIKey            string `env:"FEED_API_KEY, required"`
	BaseURL           string `env:"FEED_BASE_URL, default=https://api.joshlei.com/v2/growagarden"`
	RequestsPerMinute int    `env:"FEED_REQUESTS_PER_MINUTE, default=60"`
}

func (f *Feed) validate() error {
	if f.RequestsPerMinute < 1 {
		return fmt.Errorf("FEED_REQUESTS_PER_MINUTE must be positive, got %d", f.RequestsPerMinute)
	}
	return nil
}

// Channels maps each feed to the chat it is published in. Zero disables the feed.
type Channels struct {
	Stock          int64 `env:"STOCK_CHANNEL_ID"`
	EventShop      int64 `env:"EVENTSHOP_CHANNEL_ID"`
	Merchant       int64 `env:"MERCHANT_CHANNEL_ID"`
	Seed           int64 `env:"SEED_CHANNEL_ID"`
	Gear           int64 `env:"GEAR_CHANNEL_ID"`
	Egg            int64 `env:"EGG_CHANNEL_ID"`
	Weather        int64 `env:"WEATHER_CHANNEL_ID"`
	WeatherUpdates int64 `env:"WEATHER_UPDATES_CHANNEL_ID"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration using the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Feed.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFeed reads only the feed settings, for tools that do not talk to Telegram.
func LoadFeed(ctx context.Context, l envconfig.Lookuper) (*Feed, error) {
	var f Feed
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &f,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
