// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application configuration.
type Config struct {
	HTTPAddr          string        `env:"HTTP_ADDR" env-default:":5000" env-description:"HTTP listen address"`
	DatabaseURL       string        `env:"DATABASE_URL" env-default:"./data/topics.db" env-description:"SQLite database path or DSN"`
	LogLevel          string        `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	SeedFile          string        `env:"SEED_FILE" env-description:"YAML file replacing the built-in seed topics"`
	TelegramBotToken  string        `env:"TELEGRAM_BOT_TOKEN" env-description:"enables the Telegram bot when set"`
	AllowedUsersList  string        `env:"ALLOWED_USERS" env-description:"comma-separated Telegram user IDs allowed to use the bot"`
	TopicFeedURL      string        `env:"TOPIC_FEED_URL" env-description:"RSS/Atom feed to import topics from"`
	TopicFeedInterval time.Duration `env:"TOPIC_FEED_INTERVAL" env-default:"0s" env-description:"feed sync period, 0 disables periodic sync"`

	AllowedUsers []int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	users, err := parseUserIDs(cfg.AllowedUsersList)
	if err != nil {
		return nil, err
	}
	cfg.AllowedUsers = users

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required values are present and sane.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.TopicFeedInterval < 0 {
		errs = append(errs, fmt.Errorf("TOPIC_FEED_INTERVAL must not be negative, got %s", c.TopicFeedInterval))
	}
	return errors.Join(errs...)
}

// BotEnabled reports whether the Telegram front end should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// FeedSyncEnabled reports whether the feed should be re-imported periodically.
func (c *Config) FeedSyncEnabled() bool {
	return c.TopicFeedURL != "" && c.TopicFeedInterval > 0
}

// Usage returns a description of every supported environment variable.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		ids = append(ids, uid)
	}
	return ids, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	return len(c.AllowedUsers) == 0 || slices.Contains(c.AllowedUsers, userID)
}
