package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/internal/version"
	"github.com/Fullex26/hubnotify/pkg/models"
)

// Webhook sends run reports as JSON to a generic HTTP endpoint
type Webhook struct {
	url            string
	method         string
	includePayload bool
	client         *http.Client
}

func NewWebhook(cfg config.WebhookConfig) *Webhook {
	method := cfg.Method
	if method == "" {
		method = http.MethodPost
	}
	return &Webhook{
		url:            cfg.URL,
		method:         method,
		includePayload: cfg.IncludePayload,
		client:         &http.Client{},
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, report models.Report) error {
	if !w.includePayload {
		report.Payload = nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return w.send(ctx, data)
}

func (w *Webhook) Test(ctx context.Context) error {
	data, err := json.Marshal(map[string]string{"message": "hubnotify test message"})
	if err != nil {
		return err
	}
	return w.send(ctx, data)
}

func (w *Webhook) send(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, w.method, w.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hubnotify/"+version.Version)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
