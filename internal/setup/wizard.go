// Package setup implements the interactive hubnotify setup wizard.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/Fullex26/hubnotify/internal/config"
)

const DefaultEnvPath = ".hubnotify.env"

// defaultConfigTemplate is written when no config file exists yet.
const defaultConfigTemplate = `# hubnotify configuration
# https://github.com/Fullex26/hubnotify

# summary: log the payload and add it to the job summary
# listing: log the payload, the hub repo and the working directory entries
mode: "summary"

summary:
  title: "Payload"

# ── Relay channels (optional) ──
notifications:
  telegram:
    enabled: false
    bot_token: "${HUBNOTIFY_TELEGRAM_TOKEN}"
    chat_id: "${HUBNOTIFY_TELEGRAM_CHAT_ID}"

  ntfy:
    enabled: false
    topic: "hubnotify"
    server: "https://ntfy.sh"
    token: ""

  discord:
    enabled: false
    webhook_url: "${HUBNOTIFY_DISCORD_WEBHOOK}"

  webhook:
    enabled: false
    url: ""
    method: "POST"
    include_payload: false

# ── repository_dispatch to the hub repo ──
dispatch:
  enabled: false
  token: "${HUBNOTIFY_DISPATCH_TOKEN}"
  event_type: "hub-notify"
`

type wizardCreds struct {
	envVars    map[string]string // written to env file
	ntfyTopic  string            // written directly into config (not secret)
	ntfyServer string
	ntfyToken  string
	eventType  string
}

// Wizard asks its questions on in and prints to out
type Wizard struct {
	in   *bufio.Reader
	out  io.Writer
	fd   int // terminal fd for masked input, -1 when in is not a terminal
	test func(configPath string) error
}

// New returns a wizard reading answers from in
func New(in io.Reader, out io.Writer) *Wizard {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Wizard{
		in:   bufio.NewReader(in),
		out:  out,
		fd:   fd,
		test: runTest,
	}
}

// Run is the entry point for the interactive setup wizard.
func Run(configPath, envPath string) error {
	return New(os.Stdin, os.Stdout).Run(configPath, envPath)
}

func (w *Wizard) Run(configPath, envPath string) error {
	w.println()
	w.println("📣 hubnotify setup")
	w.println("──────────────────")
	w.println()

	if err := w.ensureConfig(configPath); err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	cfg := string(data)

	// ── Mode ────────────────────────────────────────────────────
	w.println("  What should the step do with the event payload?")
	w.println("    [1] Summary — log it and add it to the job summary  (recommended)")
	w.println("    [2] Listing — log it, the hub repo and the working directory")
	w.println()
	w.print("  Selection [1]: ")

	mode := "summary"
	if w.readLine() == "2" {
		mode = "listing"
	}
	cfg = strings.Replace(cfg, `mode: "summary"`, fmt.Sprintf(`mode: "%s"`, mode), 1)
	w.println()

	if mode == "summary" {
		w.print("  Summary section title [Payload]: ")
		if v := strings.TrimSpace(w.readLine()); v != "" {
			cfg = strings.Replace(cfg, `  title: "Payload"`, fmt.Sprintf(`  title: %q`, v), 1)
		}
		w.println()
	}

	// ── Relay ────────────────────────────────────────────────────
	w.println("  Relay each run report somewhere?")
	w.println("    [0] No relay")
	w.println("    [1] Telegram")
	w.println("    [2] Discord")
	w.println("    [3] ntfy.sh  (push notifications, no account needed)")
	w.println("    [4] Webhook")
	w.println("    [5] repository_dispatch to the hub repo")
	w.println()
	w.print("  Selection [0]: ")

	var channel string
	switch w.readLine() {
	case "1":
		channel = "telegram"
	case "2":
		channel = "discord"
	case "3":
		channel = "ntfy"
	case "4":
		channel = "webhook"
	case "5":
		channel = "dispatch"
	}
	w.println()

	if channel != "" {
		creds, err := w.collectCredentials(channel)
		if err != nil {
			return err
		}

		if len(creds.envVars) > 0 {
			if err := writeEnvFile(envPath, creds.envVars); err != nil {
				return fmt.Errorf("writing env file: %w", err)
			}
			// config.Load expands ${VARS} from the process environment
			for k, v := range creds.envVars {
				_ = os.Setenv(k, v)
			}
			w.printf("  ✅ Credentials saved to %s\n", envPath)
		}
		cfg = applyCredentials(cfg, channel, creds)
	}

	if err := os.WriteFile(configPath, []byte(cfg), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if _, err := config.Load(configPath); err != nil {
		return fmt.Errorf("checking written config: %w", err)
	}
	w.printf("  ✅ Config written: %s\n", configPath)
	w.println()

	// ── Test message ──────────────────────────────────────────────
	if channel != "" {
		w.print("  Send a test message? [Y/n]: ")
		if w.readBool(true) {
			w.print("  Sending... ")
			if err := w.test(configPath); err != nil {
				w.printf("\n  ⚠️  Test failed: %v\n", err)
				w.println("  Check your credentials, then retry: hubnotify test")
			} else {
				w.println("✅")
			}
		}
		w.println()
	}

	w.println("✅ Setup complete!")
	w.println("   Commit the config and reference secrets from the workflow environment.")
	w.println()
	return nil
}

// ensureConfig creates the config file from the default template if absent.
func (w *Wizard) ensureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return fmt.Errorf("creating default config: %w", err)
	}
	w.printf("  Created default config: %s\n\n", path)
	return nil
}

// collectCredentials prompts for channel-specific secrets.
func (w *Wizard) collectCredentials(channel string) (wizardCreds, error) {
	c := wizardCreds{envVars: make(map[string]string)}

	switch channel {
	case "telegram":
		w.println("  Telegram")
		w.println("  ──────────────────────────────────────────────────────────")
		w.println("  1. Open Telegram and message @BotFather → /newbot")
		w.println("  2. Get your Chat ID by messaging @userinfobot")
		w.println()

		token, err := w.readMasked("  Bot token:  ")
		if err != nil {
			return c, err
		}
		w.print("  Chat ID:    ")
		chatID := w.readLine()
		c.envVars["HUBNOTIFY_TELEGRAM_TOKEN"] = strings.TrimSpace(token)
		c.envVars["HUBNOTIFY_TELEGRAM_CHAT_ID"] = strings.TrimSpace(chatID)

	case "discord":
		w.println("  Discord")
		w.println("  ──────────────────────────────────────────────────────────")
		w.println("  Server Settings → Integrations → Webhooks → New Webhook")
		w.println()

		u, err := w.readMasked("  Webhook URL: ")
		if err != nil {
			return c, err
		}
		c.envVars["HUBNOTIFY_DISCORD_WEBHOOK"] = strings.TrimSpace(u)

	case "ntfy":
		w.println("  ntfy.sh")
		w.println("  ──────────────────────────────────────────────────────────")
		w.println("  Subscribe to your topic in the ntfy app to receive reports.")
		w.println()

		w.print("  Topic name [hubnotify]: ")
		topic := strings.TrimSpace(w.readLine())
		if topic == "" {
			topic = "hubnotify"
		}
		w.print("  Server     [https://ntfy.sh]: ")
		server := strings.TrimSpace(w.readLine())
		if server == "" {
			server = "https://ntfy.sh"
		}
		token, err := w.readMasked("  Access token (optional, Enter to skip): ")
		if err != nil {
			return c, err
		}
		c.ntfyTopic = topic
		c.ntfyServer = server
		c.ntfyToken = strings.TrimSpace(token)

	case "webhook":
		w.println("  Webhook")
		w.println("  ──────────────────────────────────────────────────────────")
		w.println("  hubnotify will POST each run report as JSON to this URL.")
		w.println()

		u, err := w.readMasked("  URL: ")
		if err != nil {
			return c, err
		}
		c.envVars["HUBNOTIFY_WEBHOOK_URL"] = strings.TrimSpace(u)

	case "dispatch":
		w.println("  repository_dispatch")
		w.println("  ──────────────────────────────────────────────────────────")
		w.println("  Needs a token with write access to the hub repository.")
		w.println()

		token, err := w.readMasked("  Token: ")
		if err != nil {
			return c, err
		}
		w.print("  Event type [hub-notify]: ")
		c.eventType = strings.TrimSpace(w.readLine())
		c.envVars["HUBNOTIFY_DISPATCH_TOKEN"] = strings.TrimSpace(token)
	}

	w.println()
	return c, nil
}

// applyCredentials updates the config YAML for the selected channel.
func applyCredentials(cfg, channel string, c wizardCreds) string {
	if channel == "dispatch" {
		cfg = strings.Replace(cfg, "dispatch:\n  enabled: false", "dispatch:\n  enabled: true", 1)
		if c.eventType != "" {
			cfg = strings.Replace(cfg, `  event_type: "hub-notify"`, fmt.Sprintf(`  event_type: %q`, c.eventType), 1)
		}
		return cfg
	}

	cfg = setInBlock(cfg, channel, "    enabled: false", "    enabled: true")

	switch channel {
	case "ntfy":
		cfg = setInBlock(cfg, "ntfy", `    topic: "hubnotify"`, fmt.Sprintf(`    topic: "%s"`, c.ntfyTopic))
		cfg = setInBlock(cfg, "ntfy", `    server: "https://ntfy.sh"`, fmt.Sprintf(`    server: "%s"`, c.ntfyServer))
		if c.ntfyToken != "" {
			cfg = setInBlock(cfg, "ntfy", `    token: ""`, fmt.Sprintf(`    token: "%s"`, c.ntfyToken))
		}
	case "webhook":
		cfg = setInBlock(cfg, "webhook", `    url: ""`, `    url: "${HUBNOTIFY_WEBHOOK_URL}"`)
	}

	return cfg
}

// setInBlock replaces old with replacement within the YAML block that begins
// with "  {name}:\n". The block ends at the first non-empty line indented by
// fewer than 4 spaces.
func setInBlock(cfg, name, old, replacement string) string {
	marker := "  " + name + ":\n"
	idx := strings.Index(cfg, marker)
	if idx == -1 {
		return cfg
	}

	after := cfg[idx+len(marker):]

	end := len(after)
	pos := 0
	for pos < len(after) {
		nl := strings.IndexByte(after[pos:], '\n')
		if nl == -1 {
			break
		}
		line := after[pos : pos+nl]
		if len(line) > 0 && !strings.HasPrefix(line, "    ") {
			end = pos
			break
		}
		pos += nl + 1
	}

	block := strings.Replace(after[:end], old, replacement, 1)
	return cfg[:idx+len(marker)] + block + after[end:]
}

// writeEnvFile writes KEY=value pairs to path (one per line, mode 0600).
func writeEnvFile(path string, vars map[string]string) error {
	var sb strings.Builder
	for k, v := range vars {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0600)
}

// runTest invokes the current binary's "test" subcommand. The child inherits
// the variables set with os.Setenv above.
func runTest(configPath string) error {
	self, err := os.Executable()
	if err != nil {
		self = "hubnotify"
	}
	cmd := exec.Command(self, "--config", configPath, "test")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (w *Wizard) print(s string)                 { fmt.Fprint(w.out, s) }
func (w *Wizard) println(a ...any)               { fmt.Fprintln(w.out, a...) }
func (w *Wizard) printf(format string, a ...any) { fmt.Fprintf(w.out, format, a...) }

// readLine reads one line, stripping the trailing newline.
func (w *Wizard) readLine() string {
	line, _ := w.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// readMasked reads a secret without echoing characters when input is a TTY.
// Falls back to plain line reading for pipes and CI.
func (w *Wizard) readMasked(prompt string) (string, error) {
	w.print(prompt)
	if w.fd >= 0 && term.IsTerminal(w.fd) {
		b, err := term.ReadPassword(w.fd)
		w.println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}
	return w.readLine(), nil
}

// readBool parses a y/n response; returns defaultVal on empty input.
func (w *Wizard) readBool(defaultVal bool) bool {
	line := strings.ToLower(strings.TrimSpace(w.readLine()))
	if line == "" {
		return defaultVal
	}
	return line == "y" || line == "yes"
}
