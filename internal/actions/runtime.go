// Package actions is the GitHub Actions side of the step: inputs, the event
// payload, workflow commands on stdout and the job summary file.
package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/Fullex26/hubnotify/pkg/models"
)

// Runtime talks to the Actions runner through environment variables and stdout
type Runtime struct {
	getenv func(string) string
	out    io.Writer

	mu       sync.Mutex
	exitCode int
	summary  *Summary
}

// New returns a runtime bound to the process environment and stdout
func New() *Runtime {
	return NewWithEnv(os.Getenv, os.Stdout)
}

// NewWithEnv returns a runtime reading variables through getenv and writing
// workflow commands to out.
func NewWithEnv(getenv func(string) string, out io.Writer) *Runtime {
	r := &Runtime{getenv: getenv, out: out}
	r.summary = &Summary{getenv: getenv}
	return r
}

// InActions reports whether the process runs on an Actions runner
func (r *Runtime) InActions() bool {
	return r.getenv("GITHUB_ACTIONS") == "true"
}

// Input returns the trimmed value of the named action input, "" when absent.
// "hub-repo" is read from INPUT_HUB-REPO; spaces become underscores.
func (r *Runtime) Input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(r.getenv(key))
}

// Payload returns the raw webhook payload of the triggering event.
// No GITHUB_EVENT_PATH means an empty object, as does a path that does not exist.
func (r *Runtime) Payload() (json.RawMessage, error) {
	path := r.getenv("GITHUB_EVENT_PATH")
	if path == "" {
		return json.RawMessage("{}"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.Info(fmt.Sprintf("GITHUB_EVENT_PATH %s does not exist", path))
			return json.RawMessage("{}"), nil
		}
		return nil, fmt.Errorf("reading event payload: %w", err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("event payload at %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}

// Context returns the run metadata exported by the runner
func (r *Runtime) Context() models.EventContext {
	apiURL := r.getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	serverURL := r.getenv("GITHUB_SERVER_URL")
	if serverURL == "" {
		serverURL = "https://github.com"
	}
	return models.EventContext{
		EventName:  r.getenv("GITHUB_EVENT_NAME"),
		Repository: r.getenv("GITHUB_REPOSITORY"),
		SHA:        r.getenv("GITHUB_SHA"),
		Ref:        r.getenv("GITHUB_REF"),
		Workflow:   r.getenv("GITHUB_WORKFLOW"),
		Action:     r.getenv("GITHUB_ACTION"),
		Actor:      r.getenv("GITHUB_ACTOR"),
		Job:        r.getenv("GITHUB_JOB"),
		RunID:      r.getenv("GITHUB_RUN_ID"),
		RunNumber:  r.getenv("GITHUB_RUN_NUMBER"),
		ServerURL:  serverURL,
		APIURL:     apiURL,
	}
}

// Info writes a plain log line
func (r *Runtime) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, msg)
}

func (r *Runtime) Debug(msg string)   { r.command("debug", msg) }
func (r *Runtime) Notice(msg string)  { r.command("notice", msg) }
func (r *Runtime) Warning(msg string) { r.command("warning", msg) }
func (r *Runtime) Error(msg string)   { r.command("error", msg) }

// SetFailed logs msg as an error annotation and marks the step as failed
func (r *Runtime) SetFailed(msg string) {
	r.mu.Lock()
	r.exitCode = 1
	r.mu.Unlock()
	r.Error(msg)
}

// ExitCode is 1 once SetFailed has been called, 0 otherwise
func (r *Runtime) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitCode
}

// Summary returns the job summary buffer
func (r *Runtime) Summary() *Summary {
	return r.summary
}

func (r *Runtime) command(name, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "::%s::%s\n", name, escapeData(msg))
}

// escapeData applies the runner's escaping for workflow command messages
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
