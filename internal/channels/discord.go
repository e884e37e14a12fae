package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

// Discord posts run reports to a Discord webhook
type Discord struct {
	webhookURL string
	client     *http.Client
}

func NewDiscord(cfg config.DiscordConfig) *Discord {
	return &Discord{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{},
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, report models.Report) error {
	color := 0x2ecc71 // green
	switch report.Status {
	case models.StatusFailed:
		color = 0xe74c3c // red
	case models.StatusRunning:
		color = 0xf39c12
	}

	fields := []map[string]any{}
	for _, f := range reportFields(report) {
		fields = append(fields, map[string]any{
			"name": f.name, "value": f.value, "inline": f.name != "Error",
		})
	}

	embed := map[string]any{
		"title":  report.Headline(),
		"color":  color,
		"fields": fields,
	}
	if u := report.Context.RunURL(); u != "" {
		embed["url"] = u
	}

	return d.sendJSON(ctx, map[string]any{"embeds": []any{embed}})
}

func (d *Discord) Test(ctx context.Context) error {
	return d.sendJSON(ctx, map[string]string{
		"content": "**hubnotify** test message\n\nIf you see this, run reports will arrive here.",
	})
}

func (d *Discord) sendJSON(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}
