package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fullex26/hubnotify/pkg/models"
)

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalValidConfig = `
mode: listing
notifications:
  ntfy:
    enabled: true
    topic: "test-topic"
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != models.ModeSummary {
		t.Errorf("Mode = %q, want %q", cfg.Mode, models.ModeSummary)
	}
	if cfg.Summary.Title != "Payload" {
		t.Errorf("Summary.Title = %q, want %q", cfg.Summary.Title, "Payload")
	}
	if cfg.Notifications.Ntfy.Server != "https://ntfy.sh" {
		t.Errorf("Ntfy.Server = %q, want %q", cfg.Notifications.Ntfy.Server, "https://ntfy.sh")
	}
	if cfg.Dispatch.EventType != "hub-notify" {
		t.Errorf("Dispatch.EventType = %q, want %q", cfg.Dispatch.EventType, "hub-notify")
	}
	if cfg.HasRelay() {
		t.Error("no relay should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", minimalValidConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeListing {
		t.Errorf("Mode = %q, want listing", cfg.Mode)
	}
	if !cfg.Notifications.Ntfy.Enabled {
		t.Error("ntfy should be enabled")
	}
	if cfg.Notifications.Ntfy.Topic != "test-topic" {
		t.Errorf("ntfy topic = %q, want %q", cfg.Notifications.Ntfy.Topic, "test-topic")
	}
	// untouched defaults survive decoding
	if cfg.Notifications.Ntfy.Server != "https://ntfy.sh" {
		t.Errorf("ntfy server = %q, want default", cfg.Notifications.Ntfy.Server)
	}
}

func TestLoad_TOML(t *testing.T) {
	body := `
mode = "listing"

[summary]
title = "Event"

[dispatch]
enabled = true
token = "ghp_x"
`
	path := writeConfigFile(t, "hubnotify.toml", body)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeListing {
		t.Errorf("Mode = %q, want listing", cfg.Mode)
	}
	if cfg.Summary.Title != "Event" {
		t.Errorf("Summary.Title = %q, want Event", cfg.Summary.Title)
	}
	if !cfg.Dispatch.Enabled || cfg.Dispatch.Token != "ghp_x" {
		t.Errorf("Dispatch = %+v", cfg.Dispatch)
	}
	if cfg.Dispatch.EventType != "hub-notify" {
		t.Errorf("Dispatch.EventType = %q, want default", cfg.Dispatch.EventType)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("HUBNOTIFY_TEST_TOKEN", "my-secret-token")
	t.Setenv("HUBNOTIFY_TEST_CHAT", "12345")

	body := `
notifications:
  telegram:
    enabled: true
    bot_token: "${HUBNOTIFY_TEST_TOKEN}"
    chat_id: "${HUBNOTIFY_TEST_CHAT}"
`
	path := writeConfigFile(t, "config.yaml", body)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Notifications.Telegram.BotToken != "my-secret-token" {
		t.Errorf("BotToken = %q, want %q", cfg.Notifications.Telegram.BotToken, "my-secret-token")
	}
	if cfg.Notifications.Telegram.ChatID != "12345" {
		t.Errorf("ChatID = %q, want %q", cfg.Notifications.Telegram.ChatID, "12345")
	}
}

func TestLoad_Normalizes(t *testing.T) {
	body := `
mode: "  LISTING "
summary:
  title: "   "
notifications:
  webhook:
    enabled: true
    url: "http://example.com"
    method: put
`
	path := writeConfigFile(t, "config.yaml", body)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeListing {
		t.Errorf("Mode = %q, want listing", cfg.Mode)
	}
	if cfg.Summary.Title != "Payload" {
		t.Errorf("Summary.Title = %q, want Payload", cfg.Summary.Title)
	}
	if cfg.Notifications.Webhook.Method != "PUT" {
		t.Errorf("Webhook.Method = %q, want PUT", cfg.Notifications.Webhook.Method)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "reading config")
	}
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultConfigPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeSummary {
		t.Errorf("Mode = %q, want defaults", cfg.Mode)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "{{{{not: valid yaml at all")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "parsing config")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "mode: both\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "invalid config")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Config)
		want string
	}{
		{"bad mode", func(c *Config) { c.Mode = "both" }, "invalid mode"},
		{"telegram token", func(c *Config) {
			c.Notifications.Telegram = TelegramConfig{Enabled: true, ChatID: "1"}
		}, "bot_token"},
		{"telegram chat", func(c *Config) {
			c.Notifications.Telegram = TelegramConfig{Enabled: true, BotToken: "t"}
		}, "chat_id"},
		{"ntfy topic", func(c *Config) { c.Notifications.Ntfy.Enabled = true }, "topic"},
		{"discord url", func(c *Config) { c.Notifications.Discord.Enabled = true }, "webhook_url"},
		{"webhook url", func(c *Config) { c.Notifications.Webhook.Enabled = true }, "url"},
		{"dispatch token", func(c *Config) { c.Dispatch.Enabled = true }, "token"},
		{"dispatch event type", func(c *Config) {
			c.Dispatch = DispatchConfig{Enabled: true, Token: "t"}
		}, "event_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.set(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestHasRelay(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Config)
		want bool
	}{
		{"none", func(c *Config) {}, false},
		{"telegram", func(c *Config) { c.Notifications.Telegram.Enabled = true }, true},
		{"ntfy", func(c *Config) { c.Notifications.Ntfy.Enabled = true }, true},
		{"discord", func(c *Config) { c.Notifications.Discord.Enabled = true }, true},
		{"webhook", func(c *Config) { c.Notifications.Webhook.Enabled = true }, true},
		{"dispatch", func(c *Config) { c.Dispatch.Enabled = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.set(cfg)
			if got := cfg.HasRelay(); got != tt.want {
				t.Errorf("HasRelay() = %v, want %v", got, tt.want)
			}
		})
	}
}
