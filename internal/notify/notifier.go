// Package notify runs the step itself: read the hub-repo input and the event
// payload, echo the payload to the log and the job summary (or list the
// working directory), and turn any failure into a single failure report.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Fullex26/hubnotify/pkg/models"
)

// HubRepoInput is the action input naming the hub repository
const HubRepoInput = "hub-repo"

// Inputs reads named action inputs
type Inputs interface {
	Input(name string) string
}

// EventSource supplies the raw payload of the triggering event
type EventSource interface {
	Payload() (json.RawMessage, error)
}

// Logger is the informational log channel
type Logger interface {
	Info(msg string)
}

// Summary is the job summary document
type Summary interface {
	AddDetails(label, content string)
	Write() error
}

// DirReader lists entry names of a directory
type DirReader interface {
	ReadDir(dir string) ([]string, error)
}

// FailureReporter marks the step failed with a message
type FailureReporter interface {
	SetFailed(msg string)
}

// Deps are the host collaborators a Notifier works through
type Deps struct {
	Inputs   Inputs
	Events   EventSource
	Log      Logger
	Summary  Summary
	Dir      DirReader
	Failures FailureReporter
}

// Options select the variant and its labels
type Options struct {
	Mode         models.Mode
	SummaryTitle string
}

// Result is what one Run observed
type Result struct {
	Status  models.Status
	HubRepo string
	Payload json.RawMessage
	Text    string // payload rendered with 2-space indentation
	Listing []string
	Err     error
}

// Notifier echoes the event payload of a workflow run
type Notifier struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) *Notifier {
	if opts.Mode == "" {
		opts.Mode = models.ModeSummary
	}
	if opts.SummaryTitle == "" {
		opts.SummaryTitle = "Payload"
	}
	if deps.Dir == nil {
		deps.Dir = OSDir{}
	}
	return &Notifier{deps: deps, opts: opts}
}

// Run executes the step once. It never returns an error or panics: a failure
// in any step is reported through FailureReporter and recorded in Result.
func (n *Notifier) Run() (res Result) {
	res.Status = models.StatusRunning
	step := "read input"

	defer func() {
		if r := recover(); r != nil {
			res.Err = &StepFailure{Step: step, Err: fmt.Errorf("%v", r)}
		}
		if res.Err != nil {
			res.Status = models.StatusFailed
			n.deps.Failures.SetFailed(res.Err.Error())
			return
		}
		res.Status = models.StatusSucceeded
	}()

	res.HubRepo = n.deps.Inputs.Input(HubRepoInput)

	step = "read payload"
	payload, err := n.deps.Events.Payload()
	if err != nil {
		res.Err = &StepFailure{Step: step, Err: err}
		return res
	}
	res.Payload = payload

	step = "serialize payload"
	text, err := FormatPayload(payload)
	if err != nil {
		res.Err = &StepFailure{Step: step, Err: err}
		return res
	}
	res.Text = text
	n.deps.Log.Info(text)

	switch n.opts.Mode {
	case models.ModeListing:
		n.deps.Log.Info("Hub Repo: " + res.HubRepo)

		step = "list directory"
		names, err := n.deps.Dir.ReadDir(".")
		if err != nil {
			res.Err = &StepFailure{Step: step, Err: err}
			return res
		}
		res.Listing = names
		n.deps.Log.Info(strings.Join(names, "\n"))
	default:
		step = "write summary"
		n.deps.Summary.AddDetails(n.opts.SummaryTitle, text)
		if err := n.deps.Summary.Write(); err != nil {
			res.Err = &StepFailure{Step: step, Err: err}
			return res
		}
	}

	return res
}

// OSDir reads directories from the local filesystem
type OSDir struct{}

// ReadDir returns entry names in the order the filesystem package yields them
func (OSDir) ReadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
