// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a registered function periodically until it is
// unregistered.
type Scheduler interface {
	// Register starts calling fn. The returned func stops it and must be
	// safe to call more than once.
	Register(fn func()) (unregister func())
}

// TickScheduler calls each registered function from its own goroutine at a
// fixed interval.
type TickScheduler struct {
	ctx      context.Context
	interval time.Duration
}

// NewTickScheduler returns a scheduler whose loops also end when ctx is done.
func NewTickScheduler(ctx context.Context, interval time.Duration) *TickScheduler {
	return &TickScheduler{ctx: ctx, interval: interval}
}

// Register implements Scheduler. Unregistering blocks until the loop has
// exited, so fn is never running once it returns.
func (s *TickScheduler) Register(fn func()) func() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
