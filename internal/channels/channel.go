package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/Fullex26/hubnotify/pkg/models"
)

// Channel relays run reports to an external service
type Channel interface {
	// Name returns the channel identifier
	Name() string
	// Send delivers a run report
	Send(ctx context.Context, report models.Report) error
	// Test sends a test message to verify configuration
	Test(ctx context.Context) error
}

// field is one labelled line of a report
type field struct {
	name  string
	value string
}

// reportFields lists the details every channel shows, skipping empty ones
func reportFields(r models.Report) []field {
	var fields []field
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, field{name, value})
		}
	}

	add("Hub repo", r.HubRepo)
	add("Ref", r.Context.Ref)
	sha := r.Context.SHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	add("Commit", sha)
	add("Actor", r.Context.Actor)
	if len(r.Listing) > 0 {
		add("Entries", fmt.Sprintf("%d", len(r.Listing)))
	}
	add("Error", r.Error)
	return fields
}

// reportBody renders a report as plain text lines, run link last
func reportBody(r models.Report) string {
	var lines []string
	for _, f := range reportFields(r) {
		lines = append(lines, f.name+": "+f.value)
	}
	if u := r.Context.RunURL(); u != "" {
		lines = append(lines, u)
	}
	return strings.Join(lines, "\n")
}
