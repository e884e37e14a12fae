// Package app wires the step to the Actions runtime and the relay channels.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Fullex26/hubnotify/internal/actions"
	"github.com/Fullex26/hubnotify/internal/channels"
	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/internal/dispatch"
	"github.com/Fullex26/hubnotify/internal/notify"
	"github.com/Fullex26/hubnotify/internal/relay"
	"github.com/Fullex26/hubnotify/internal/version"
	"github.com/Fullex26/hubnotify/pkg/models"
)

// Action inputs besides hub-repo
const (
	ModeInput   = "mode"
	ConfigInput = "config"
)

// Overrides take precedence over action inputs and the config file
type Overrides struct {
	Mode    models.Mode
	HubRepo string
}

// App is one invocation of the step
type App struct {
	cfg      *config.Config
	rt       *actions.Runtime
	ov       Overrides
	relays   *relay.Fanout
	channels []channels.Channel
}

// New resolves the mode and registers every enabled relay channel
func New(cfg *config.Config, rt *actions.Runtime, ov Overrides) (*App, error) {
	if ov.Mode == "" {
		ov.Mode = models.Mode(strings.ToLower(rt.Input(ModeInput)))
	}
	if ov.Mode == "" {
		ov.Mode = cfg.Mode
	}
	if !ov.Mode.Valid() {
		return nil, fmt.Errorf("invalid mode: %s (must be summary or listing)", ov.Mode)
	}

	a := &App{
		cfg:    cfg,
		rt:     rt,
		ov:     ov,
		relays: relay.New(),
	}

	n := cfg.Notifications
	if n.Telegram.Enabled {
		a.channels = append(a.channels, channels.NewTelegram(n.Telegram))
	}
	if n.Ntfy.Enabled {
		a.channels = append(a.channels, channels.NewNtfy(n.Ntfy))
	}
	if n.Discord.Enabled {
		a.channels = append(a.channels, channels.NewDiscord(n.Discord))
	}
	if n.Webhook.Enabled {
		a.channels = append(a.channels, channels.NewWebhook(n.Webhook))
	}
	if cfg.Dispatch.Enabled {
		a.channels = append(a.channels, dispatch.NewHub(cfg.Dispatch, a.hubRepo()))
	}

	for _, c := range a.channels {
		a.relays.Subscribe(c.Name(), c.Send)
	}
	return a, nil
}

// Mode is the variant this invocation runs
func (a *App) Mode() models.Mode { return a.ov.Mode }

// Channels returns the registered relay channels
func (a *App) Channels() []channels.Channel { return a.channels }

// Run executes the step and relays its report. The returned result carries
// the step outcome; relay failures only produce warnings.
func (a *App) Run(ctx context.Context) notify.Result {
	slog.Debug("hubnotify starting",
		"version", version.Version,
		"mode", a.ov.Mode,
		"relays", a.relays.Len(),
	)
	if a.rt.InActions() {
		a.rt.Debug(fmt.Sprintf("hubnotify %s mode=%s relays=%d", version.Version, a.ov.Mode, a.relays.Len()))
	}

	n := notify.New(notify.Deps{
		Inputs:   inputs{rt: a.rt, hubRepo: a.ov.HubRepo},
		Events:   a.rt,
		Log:      a.rt,
		Summary:  a.rt.Summary(),
		Failures: a.rt,
	}, notify.Options{
		Mode:         a.ov.Mode,
		SummaryTitle: a.cfg.Summary.Title,
	})

	res := n.Run()
	if res.Err != nil {
		var sf *notify.StepFailure
		step := ""
		if errors.As(res.Err, &sf) {
			step = sf.Step
		}
		slog.Error("step failed", "step", step, "error", res.Err)
	}

	if !a.cfg.HasRelay() {
		return res
	}

	report := a.Report(res)
	if err := a.relays.Publish(ctx, report); err != nil {
		a.reportRelayErrors(err)
		slog.Warn("relay failed", "report", report.ID, "error", err)
	} else {
		slog.Info("report relayed", "report", report.ID, "channels", a.relays.Len())
	}
	return res
}

// reportRelayErrors annotates each failed channel. A dispatch skipped for
// lack of a hub repo is a notice, anything else a warning.
func (a *App) reportRelayErrors(err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		if errors.Is(e, dispatch.ErrNoHubRepo) {
			a.rt.Notice("relay skipped: " + e.Error())
			continue
		}
		a.rt.Warning("relay failed: " + e.Error())
	}
}

// Report turns a step result into a run report
func (a *App) Report(res notify.Result) models.Report {
	r := models.NewReport(a.ov.Mode, res.HubRepo, a.rt.Context())
	r.Status = res.Status
	r.Payload = res.Payload
	r.Listing = res.Listing
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

// TestChannels sends a test message to all configured channels
func (a *App) TestChannels(ctx context.Context) error {
	if len(a.channels) == 0 {
		return errors.New("no relay channels enabled")
	}
	for _, c := range a.channels {
		slog.Info("testing channel", "name", c.Name())
		if err := c.Test(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		slog.Info("channel OK", "name", c.Name())
	}
	return nil
}

func (a *App) hubRepo() string {
	if a.ov.HubRepo != "" {
		return a.ov.HubRepo
	}
	return a.rt.Input(notify.HubRepoInput)
}

// inputs lets --hub-repo stand in for the action input
type inputs struct {
	rt      *actions.Runtime
	hubRepo string
}

func (i inputs) Input(name string) string {
	if name == notify.HubRepoInput && i.hubRepo != "" {
		return i.hubRepo
	}
	return i.rt.Input(name)
}
