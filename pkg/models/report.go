package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a run
type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

func (s Status) Emoji() string {
	switch s {
	case StatusSucceeded:
		return "✅"
	case StatusFailed:
		return "🔴"
	default:
		return "🟡"
	}
}

// MarshalText lets reports carry the status name instead of the ordinal
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "running":
		*s = StatusRunning
	case "succeeded":
		*s = StatusSucceeded
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Mode selects which variant of the step runs
type Mode string

const (
	ModeSummary Mode = "summary" // log payload + summary "Payload" section
	ModeListing Mode = "listing" // log payload + hub repo + working directory entries
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeSummary || m == ModeListing
}

// EventContext describes the workflow run that triggered the step
type EventContext struct {
	EventName  string `json:"event_name"`
	Repository string `json:"repository"`
	SHA        string `json:"sha"`
	Ref        string `json:"ref"`
	Workflow   string `json:"workflow"`
	Action     string `json:"action"`
	Actor      string `json:"actor"`
	Job        string `json:"job"`
	RunID      string `json:"run_id"`
	RunNumber  string `json:"run_number"`
	ServerURL  string `json:"server_url"`
	APIURL     string `json:"api_url"`
}

// RunURL returns the link to the workflow run, or "" when unknown
func (c EventContext) RunURL() string {
	if c.ServerURL == "" || c.Repository == "" || c.RunID == "" {
		return ""
	}
	return c.ServerURL + "/" + c.Repository + "/actions/runs/" + c.RunID
}

// Report is the outcome of one invocation, handed to relay channels
type Report struct {
	ID        string          `json:"id"`
	Status    Status          `json:"status"`
	Mode      Mode            `json:"mode"`
	HubRepo   string          `json:"hub_repo"`
	Timestamp time.Time       `json:"timestamp"`
	Context   EventContext    `json:"context"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	Listing   []string        `json:"listing,omitempty"`
}

// NewReport stamps a fresh report with an id and the current time
func NewReport(mode Mode, hubRepo string, ctx EventContext) Report {
	return Report{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		Mode:      mode,
		HubRepo:   hubRepo,
		Timestamp: time.Now().UTC(),
		Context:   ctx,
	}
}

// Headline is the one-line description used by chat channels
func (r Report) Headline() string {
	repo := r.Context.Repository
	if repo == "" {
		repo = "unknown repository"
	}
	event := r.Context.EventName
	if event == "" {
		event = "event"
	}
	return r.Status.Emoji() + " " + event + " on " + repo + " " + r.Status.String()
}
