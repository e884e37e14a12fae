package channels

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

// Ntfy publishes run reports to an ntfy topic
type Ntfy struct {
	server string
	topic  string
	token  string
	client *http.Client
}

func NewNtfy(cfg config.NtfyConfig) *Ntfy {
	server := strings.TrimRight(cfg.Server, "/")
	if server == "" {
		server = "https://ntfy.sh"
	}
	return &Ntfy{
		server: server,
		topic:  cfg.Topic,
		token:  cfg.Token,
		client: &http.Client{},
	}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Send(ctx context.Context, report models.Report) error {
	priority := "default"
	tags := "white_check_mark"
	if report.Status == models.StatusFailed {
		priority = "high"
		tags = "rotating_light"
	}

	body := reportBody(report)
	if body == "" {
		body = report.Status.String()
	}
	return n.send(ctx, report.Headline(), body, priority, tags, report.Context.RunURL())
}

func (n *Ntfy) Test(ctx context.Context) error {
	return n.send(ctx, "hubnotify", "Test message from hubnotify", "default", "white_check_mark", "")
}

func (n *Ntfy) send(ctx context.Context, title, body, priority, tags, click string) error {
	url := fmt.Sprintf("%s/%s", n.server, n.topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)
	if click != "" {
		req.Header.Set("Click", click)
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
