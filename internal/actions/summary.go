package actions

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const summaryEnvVar = "GITHUB_STEP_SUMMARY"

// Summary buffers job summary content until Write appends it to the summary file
type Summary struct {
	getenv func(string) string

	mu  sync.Mutex
	buf strings.Builder
}

// AddDetails appends a collapsible section with the given label
func (s *Summary) AddDetails(label, content string) {
	s.AddRaw(fmt.Sprintf("<details><summary>%s</summary>%s</details>", label, content), true)
}

// AddRaw appends text verbatim, optionally followed by a newline
func (s *Summary) AddRaw(text string, newline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.WriteString(text)
	if newline {
		s.buf.WriteString("\n")
	}
}

// String returns the buffered content
func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Write appends the buffer to the summary file and empties it
func (s *Summary) Write() error {
	path := s.getenv(summaryEnvVar)
	if path == "" {
		return fmt.Errorf("unable to find environment variable for $%s. Check if your runtime environment supports job summaries", summaryEnvVar)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("unable to access summary file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(s.buf.String()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	s.buf.Reset()
	return nil
}
