package setup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

func newTestWizard(input string) (*Wizard, *bytes.Buffer) {
	var out bytes.Buffer
	w := New(strings.NewReader(input), &out)
	return w, &out
}

func TestSetInBlock(t *testing.T) {
	cfg := defaultConfigTemplate

	result := setInBlock(cfg, "telegram", "    enabled: false", "    enabled: true")
	if !strings.Contains(result, "  telegram:\n    enabled: true") {
		t.Error("telegram block should have enabled: true")
	}
	if strings.Contains(result, "  ntfy:\n    enabled: true") {
		t.Error("ntfy block should still be enabled: false")
	}
}

func TestSetInBlock_NotFound(t *testing.T) {
	cfg := "some:\n  config: here\n"
	result := setInBlock(cfg, "nonexistent", "old", "new")
	if result != cfg {
		t.Error("config should be unchanged when block not found")
	}
}

func TestSetInBlock_OldNotInBlock(t *testing.T) {
	cfg := defaultConfigTemplate
	result := setInBlock(cfg, "telegram", "    nonexistent_key: value", "    new_key: value")
	if result != cfg {
		t.Error("config should be unchanged when old value not found in block")
	}
}

func TestApplyCredentials_Telegram(t *testing.T) {
	result := applyCredentials(defaultConfigTemplate, "telegram", wizardCreds{envVars: map[string]string{}})
	if !strings.Contains(result, "  telegram:\n    enabled: true") {
		t.Error("telegram should be enabled")
	}
	if strings.Contains(result, "  ntfy:\n    enabled: true") {
		t.Error("ntfy should still be disabled")
	}
}

func TestApplyCredentials_Ntfy(t *testing.T) {
	creds := wizardCreds{
		envVars:    map[string]string{},
		ntfyTopic:  "my-topic",
		ntfyServer: "https://my-server.example",
		ntfyToken:  "my-token",
	}

	result := applyCredentials(defaultConfigTemplate, "ntfy", creds)
	if !strings.Contains(result, "  ntfy:\n    enabled: true") {
		t.Error("ntfy should be enabled")
	}
	for _, want := range []string{`"my-topic"`, `"https://my-server.example"`, `"my-token"`} {
		if !strings.Contains(result, want) {
			t.Errorf("ntfy config missing %s", want)
		}
	}
}

func TestApplyCredentials_Webhook(t *testing.T) {
	result := applyCredentials(defaultConfigTemplate, "webhook", wizardCreds{envVars: map[string]string{}})
	if !strings.Contains(result, "  webhook:\n    enabled: true") {
		t.Error("webhook should be enabled")
	}
	if !strings.Contains(result, `"${HUBNOTIFY_WEBHOOK_URL}"`) {
		t.Error("webhook URL should have env var placeholder")
	}
	if strings.Contains(result, "  discord:\n    enabled: true") {
		t.Error("discord should still be disabled")
	}
}

func TestApplyCredentials_Dispatch(t *testing.T) {
	result := applyCredentials(defaultConfigTemplate, "dispatch", wizardCreds{eventType: "app-built"})
	if !strings.Contains(result, "dispatch:\n  enabled: true") {
		t.Error("dispatch should be enabled")
	}
	if !strings.Contains(result, `  event_type: "app-built"`) {
		t.Error("event type should be set")
	}
}

func TestDefaultTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubnotify.yaml")
	os.WriteFile(path, []byte(defaultConfigTemplate), 0600)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeSummary || cfg.HasRelay() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestReadBool(t *testing.T) {
	tests := []struct {
		input      string
		defaultVal bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"Y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, _ := newTestWizard(tt.input)
			if got := w.readBool(tt.defaultVal); got != tt.want {
				t.Errorf("readBool(%q, %v) = %v, want %v", tt.input, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestReadMasked_NotTerminal(t *testing.T) {
	w, out := newTestWizard("s3cret\r\n")
	got, err := w.readMasked("Token: ")
	if err != nil || got != "s3cret" {
		t.Errorf("readMasked() = %q, %v", got, err)
	}
	if out.String() != "Token: " {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestWriteEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env")

	vars := map[string]string{
		"KEY1": "value1",
		"KEY2": "value2",
	}
	if err := writeEnvFile(path, vars); err != nil {
		t.Fatalf("writeEnvFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading env file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "KEY1=value1\n") || !strings.Contains(content, "KEY2=value2\n") {
		t.Errorf("env file = %q", content)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestEnsureConfig_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	w, _ := newTestWizard("")
	if err := w.ensureConfig(path); err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading created config: %v", err)
	}
	if !strings.Contains(string(data), "notifications:") {
		t.Error("created config should contain default template")
	}
}

func TestEnsureConfig_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("existing"), 0600)

	w, _ := newTestWizard("")
	if err := w.ensureConfig(path); err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "existing" {
		t.Error("existing file should not be overwritten")
	}
}

func TestRun_ListingWithNtfy(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".github", "hubnotify.yaml")
	envPath := filepath.Join(dir, "env")

	// mode, relay, topic, server, token, test?
	w, out := newTestWizard("2\n3\nbuilds\n\n\nn\n")
	w.test = func(string) error {
		t.Error("test message should not be sent")
		return nil
	}

	if err := w.Run(cfgPath, envPath); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != models.ModeListing {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	ntfy := cfg.Notifications.Ntfy
	if !ntfy.Enabled || ntfy.Topic != "builds" || ntfy.Server != "https://ntfy.sh" {
		t.Errorf("ntfy = %+v", ntfy)
	}
	if _, err := os.Stat(envPath); !os.IsNotExist(err) {
		t.Error("ntfy needs no env file")
	}
	if !strings.Contains(out.String(), "Setup complete") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_SummaryWithWebhook(t *testing.T) {
	t.Setenv("HUBNOTIFY_WEBHOOK_URL", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hubnotify.yaml")
	envPath := filepath.Join(dir, "env")

	// mode, title, relay, url, test?
	w, out := newTestWizard("1\nEvent\n4\nhttps://hooks.example/x\ny\n")
	var tested string
	w.test = func(path string) error {
		tested = path
		return errors.New("unreachable")
	}

	if err := w.Run(cfgPath, envPath); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if tested != cfgPath {
		t.Errorf("test ran with %q", tested)
	}
	if !strings.Contains(out.String(), "Test failed: unreachable") {
		t.Errorf("output = %q", out.String())
	}

	env, _ := os.ReadFile(envPath)
	if string(env) != "HUBNOTIFY_WEBHOOK_URL=https://hooks.example/x\n" {
		t.Errorf("env file = %q", env)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Summary.Title != "Event" {
		t.Errorf("Title = %q", cfg.Summary.Title)
	}
	if !cfg.Notifications.Webhook.Enabled || cfg.Notifications.Webhook.URL != "https://hooks.example/x" {
		t.Errorf("webhook = %+v", cfg.Notifications.Webhook)
	}
}

func TestRun_NoRelay(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hubnotify.yaml")

	w, _ := newTestWizard("\n\n\n")
	if err := w.Run(cfgPath, filepath.Join(t.TempDir(), "env")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HasRelay() || cfg.Summary.Title != "Payload" {
		t.Errorf("cfg = %+v", cfg)
	}
}
