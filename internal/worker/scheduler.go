package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs delayed callbacks one at a time on a single loop goroutine.
// Callbacks scheduled after the loop has stopped are dropped.
type Scheduler struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a Scheduler. Callbacks only run once Run has been started.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// After queues fn to run on the loop once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) {
	enqueue := func() {
		select {
		case s.tasks <- fn:
		case <-s.done:
		}
	}
	if d <= 0 {
		go enqueue()
		return
	}
	time.AfterFunc(d, enqueue)
}

// Run executes queued callbacks. It blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Scheduler: starting")
	defer s.stopOnce.Do(func() { close(s.done) })

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler: shutting down")
			return
		case fn := <-s.tasks:
			s.run(fn)
		}
	}
}

func (s *Scheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduler: task panicked", "panic", r)
		}
	}()
	fn()
}
