package channels

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

const telegramAPI = "https://api.telegram.org/bot%s/sendMessage"

// Telegram sends run reports through the Telegram Bot API
type Telegram struct {
	token  string
	chatID string
	client *http.Client
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		token:  cfg.BotToken,
		chatID: cfg.ChatID,
		client: &http.Client{},
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, report models.Report) error {
	return t.send(ctx, formatReport(report))
}

func (t *Telegram) Test(ctx context.Context) error {
	return t.send(ctx, "<b>hubnotify</b> test message\n\nIf you see this, run reports will arrive here.")
}

func (t *Telegram) send(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf(telegramAPI, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("parse_mode", "HTML")
	data.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// formatReport renders a report as Telegram HTML
func formatReport(r models.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(r.Headline())))
	for _, f := range reportFields(r) {
		b.WriteString(fmt.Sprintf("\n%s: <code>%s</code>", f.name, html.EscapeString(f.value)))
	}
	if u := r.Context.RunURL(); u != "" {
		b.WriteString(fmt.Sprintf("\n\n<a href=\"%s\">View run</a>", html.EscapeString(u)))
	}

	return b.String()
}
