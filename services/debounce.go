package services

import (
	"context"
	"sync"
	"time"
)

// debouncer lets only the most recent caller through once the quiet period
// has elapsed. Earlier callers return ErrSuperseded as soon as a newer one arrives.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// Wait blocks for the quiet period
func (d *debouncer) Wait(ctx context.Context) error {
	superseded := d.claim()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-superseded:
		return ErrSuperseded
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-superseded:
		return ErrSuperseded
	default:
		d.pending = nil
		return nil
	}
}

// Cancel supersedes whoever is waiting
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		close(d.pending)
		d.pending = nil
	}
}

func (d *debouncer) claim() chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		close(d.pending)
	}
	d.pending = make(chan struct{})
	return d.pending
}
