// Package relay hands a finished run report to every registered subscriber.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Fullex26/hubnotify/pkg/models"
)

// Handler receives a report. A returned error is collected, not fatal.
type Handler func(ctx context.Context, report models.Report) error

type subscriber struct {
	name string
	h    Handler
}

// Fanout is an in-process publisher that delivers synchronously, in
// subscription order, so the step does not exit before delivery finishes.
type Fanout struct {
	mu   sync.RWMutex
	subs []subscriber
}

func New() *Fanout {
	return &Fanout{
		subs: make([]subscriber, 0),
	}
}

// Subscribe registers a named handler for all reports
func (f *Fanout) Subscribe(name string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, subscriber{name: name, h: h})
}

// Len returns the number of subscribers
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Publish delivers report to every subscriber. A failing or panicking
// subscriber does not stop the others; their errors are joined.
func (f *Fanout) Publish(ctx context.Context, report models.Report) error {
	f.mu.RLock()
	subs := append([]subscriber(nil), f.subs...)
	f.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		if err := deliver(ctx, s, report); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, s subscriber, report models.Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.h(ctx, report)
}
