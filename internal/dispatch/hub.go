// Package dispatch notifies the hub repository with a repository_dispatch event.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

const defaultAPIURL = "https://api.github.com"

// ErrNoHubRepo is returned when a report names no hub repository
var ErrNoHubRepo = errors.New("no hub repository given")

// ClientPayload is the client_payload of the dispatch event
type ClientPayload struct {
	ReportID   string `json:"report_id"`
	SourceRepo string `json:"source_repo"`
	EventName  string `json:"event_name"`
	Status     string `json:"status"`
	SHA        string `json:"sha,omitempty"`
	Ref        string `json:"ref,omitempty"`
	RunURL     string `json:"run_url,omitempty"`
}

// Hub sends repository_dispatch events to the repository named by hub-repo
type Hub struct {
	client    *github.Client
	eventType string
	repo      string // used by Test
}

// NewHub builds a token-authenticated client. hubRepo is the repository Test checks.
func NewHub(cfg config.DispatchConfig, hubRepo string) *Hub {
	eventType := cfg.EventType
	if eventType == "" {
		eventType = "hub-notify"
	}
	return &Hub{
		client:    NewTokenClient(cfg.Token, cfg.APIURL),
		eventType: eventType,
		repo:      hubRepo,
	}
}

func (h *Hub) Name() string { return "dispatch" }

// Send dispatches eventType to report.HubRepo
func (h *Hub) Send(ctx context.Context, report models.Report) error {
	owner, repo, err := ParseRepo(report.HubRepo)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(PayloadFor(report))
	if err != nil {
		return fmt.Errorf("marshal client payload: %w", err)
	}
	msg := json.RawMessage(raw)

	_, _, err = h.client.Repositories.Dispatch(ctx, owner, repo, github.DispatchRequestOptions{
		EventType:     h.eventType,
		ClientPayload: &msg,
	})
	if err != nil {
		return fmt.Errorf("dispatch %s to %s/%s: %w", h.eventType, owner, repo, err)
	}
	return nil
}

// Test checks the token can see the hub repository
func (h *Hub) Test(ctx context.Context) error {
	owner, repo, err := ParseRepo(h.repo)
	if err != nil {
		return err
	}
	if _, _, err := h.client.Repositories.Get(ctx, owner, repo); err != nil {
		return fmt.Errorf("get %s/%s: %w", owner, repo, err)
	}
	return nil
}

// PayloadFor extracts the dispatch client payload from a report
func PayloadFor(r models.Report) ClientPayload {
	return ClientPayload{
		ReportID:   r.ID,
		SourceRepo: r.Context.Repository,
		EventName:  r.Context.EventName,
		Status:     r.Status.String(),
		SHA:        r.Context.SHA,
		Ref:        r.Context.Ref,
		RunURL:     r.Context.RunURL(),
	}
}

// ParseRepo splits "owner/name"
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", ErrNoHubRepo
	}
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("hub repository %q is not in owner/name form", s)
	}
	return owner, repo, nil
}

// NewTokenClient creates a *github.Client authenticated with a token.
// Pass baseURL="" to use the real GitHub API, or a custom URL for GHES or a mock server.
func NewTokenClient(token, baseURL string) *github.Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	c := github.NewClient(httpClient)
	applyBaseURL(c, baseURL)
	return c
}

func applyBaseURL(c *github.Client, baseURL string) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" || baseURL == defaultAPIURL {
		return
	}
	u, err := url.Parse(baseURL + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}
