// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and default values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the bot: logging, Telegram transport, database, scoring rules, user-facing
// messages, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token, the authorization allow-list, and the
// transport settings. A chat may use the bot only while at least one of the
// authorized users is a member of it; AlertUserID receives a notice whenever
// an unauthorized chat tries.
type TelegramConfig struct {
	Token             string        `mapstructure:"token"               validate:"required"`
	AuthorizedUserIDs []int64       `mapstructure:"authorized_user_ids" validate:"required,min=1,dive,gt=0"`
	AlertUserID       int64         `mapstructure:"alert_user_id"       validate:"omitempty,gt=0"`
	Webhook           WebhookConfig `mapstructure:"webhook"`
}

// AlertTarget returns the user to notify about unauthorized chats: the
// configured alert user, falling back to the first authorized user.
func (c TelegramConfig) AlertTarget() int64 {
	if c.AlertUserID != 0 {
		return c.AlertUserID
	}
	if len(c.AuthorizedUserIDs) > 0 {
		return c.AuthorizedUserIDs[0]
	}
	return 0
}

// WebhookConfig enables webhook delivery of updates instead of long polling.
type WebhookConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ListenAddr  string `mapstructure:"listen_addr"  validate:"required_if=Enabled true"`
	PublicURL   string `mapstructure:"public_url"   validate:"required_if=Enabled true,omitempty,url"`
	SecretToken string `mapstructure:"secret_token"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ScoringConfig holds the hashtag catalog and day-boundary settings.
type ScoringConfig struct {
	// Hashtags maps each recognized hashtag to its positive point value.
	Hashtags map[string]int `mapstructure:"hashtags" validate:"required,min=1,dive,gt=0"`
	// Timezone determines where the calendar day boundary falls.
	Timezone string `mapstructure:"timezone" validate:"required"`
	// LedgerRetentionDays is how long pruned usage records are kept; only the
	// current day is load-bearing for dedup.
	LedgerRetentionDays int `mapstructure:"ledger_retention_days" validate:"required,gte=1"`
}

// MessagesConfig holds the user-facing message templates.
type MessagesConfig struct {
	Start             string `mapstructure:"start"              validate:"required"`
	AlreadyUsed       string `mapstructure:"already_used"       validate:"required"`
	Awarded           string `mapstructure:"awarded"            validate:"required"`
	LeaderboardHeader string `mapstructure:"leaderboard_header" validate:"required"`
	LeaderboardEmpty  string `mapstructure:"leaderboard_empty"  validate:"required"`
	ResetDone         string `mapstructure:"reset_done"         validate:"required"`
	GeneralError      string `mapstructure:"general_error"      validate:"required"`
	UnauthorizedAlert string `mapstructure:"unauthorized_alert" validate:"required"`
}

// SchedulerConfig holds the scheduled task definitions, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a single scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at configPath
// 3. BOT_* environment variables
//
// A missing config file is not an error; defaults and environment variables
// still apply. Validation failures are.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		// Config file not found is okay, we'll use defaults and env.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
