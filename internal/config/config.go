package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Fullex26/hubnotify/pkg/models"
)

const DefaultConfigPath = ".github/hubnotify.yaml"

type Config struct {
	Mode          models.Mode        `yaml:"mode" toml:"mode"`
	Summary       SummaryConfig      `yaml:"summary" toml:"summary"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications"`
	Dispatch      DispatchConfig     `yaml:"dispatch" toml:"dispatch"`
}

type SummaryConfig struct {
	Title string `yaml:"title" toml:"title"` // details label, default "Payload"
}

type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
	Ntfy     NtfyConfig     `yaml:"ntfy" toml:"ntfy"`
	Discord  DiscordConfig  `yaml:"discord" toml:"discord"`
	Webhook  WebhookConfig  `yaml:"webhook" toml:"webhook"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	BotToken string `yaml:"bot_token" toml:"bot_token"`
	ChatID   string `yaml:"chat_id" toml:"chat_id"`
}

type NtfyConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Topic   string `yaml:"topic" toml:"topic"`
	Server  string `yaml:"server" toml:"server"`
	Token   string `yaml:"token" toml:"token"`
}

type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

type WebhookConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	URL            string `yaml:"url" toml:"url"`
	Method         string `yaml:"method" toml:"method"`
	IncludePayload bool   `yaml:"include_payload" toml:"include_payload"`
}

// DispatchConfig controls the repository_dispatch sent to the hub repo
type DispatchConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Token     string `yaml:"token" toml:"token"`
	EventType string `yaml:"event_type" toml:"event_type"`
	APIURL    string `yaml:"api_url" toml:"api_url"` // empty means api.github.com
}

// Load reads and parses the config file, expanding env vars.
// A missing file at DefaultConfigPath is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && filepath.Clean(path) == filepath.Clean(DefaultConfigPath) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in config
	expanded := []byte(os.ExpandEnv(string(data)))

	if err := decode(path, expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// DefaultConfig returns sane defaults
func DefaultConfig() *Config {
	return &Config{
		Mode: models.ModeSummary,
		Summary: SummaryConfig{
			Title: "Payload",
		},
		Notifications: NotificationConfig{
			Ntfy:    NtfyConfig{Server: "https://ntfy.sh"},
			Webhook: WebhookConfig{Method: "POST"},
		},
		Dispatch: DispatchConfig{
			EventType: "hub-notify",
		},
	}
}

func (c *Config) normalize() {
	c.Mode = models.Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		c.Mode = models.ModeSummary
	}
	if strings.TrimSpace(c.Summary.Title) == "" {
		c.Summary.Title = "Payload"
	}
	c.Notifications.Webhook.Method = strings.ToUpper(c.Notifications.Webhook.Method)
}

// Validate checks the config for errors
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid mode: %s (must be summary or listing)", c.Mode)
	}

	if c.Notifications.Telegram.Enabled {
		if c.Notifications.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot_token is required when telegram is enabled")
		}
		if c.Notifications.Telegram.ChatID == "" {
			return fmt.Errorf("telegram chat_id is required when telegram is enabled")
		}
	}

	if c.Notifications.Ntfy.Enabled && c.Notifications.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy topic is required when ntfy is enabled")
	}

	if c.Notifications.Discord.Enabled && c.Notifications.Discord.WebhookURL == "" {
		return fmt.Errorf("discord webhook_url is required when discord is enabled")
	}

	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return fmt.Errorf("webhook url is required when webhook is enabled")
	}

	if c.Dispatch.Enabled {
		if c.Dispatch.Token == "" {
			return fmt.Errorf("dispatch token is required when dispatch is enabled")
		}
		if c.Dispatch.EventType == "" {
			return fmt.Errorf("dispatch event_type must not be empty")
		}
	}

	return nil
}

// HasRelay returns whether anything should receive the run report
func (c *Config) HasRelay() bool {
	return c.Notifications.Telegram.Enabled ||
		c.Notifications.Ntfy.Enabled ||
		c.Notifications.Discord.Enabled ||
		c.Notifications.Webhook.Enabled ||
		c.Dispatch.Enabled
}
