package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsDelayedTask(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	ran := make(chan struct{})
	s.After(10*time.Millisecond, func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestSchedulerRunsTasksSerially(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var running, overlaps, finished atomic.Int32
	const n = 8
	for range n {
		s.After(0, func() {
			if running.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			finished.Add(1)
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for finished.Load() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := finished.Load(); got != n {
		t.Fatalf("finished = %d, want %d", got, n)
	}
	if got := overlaps.Load(); got != 0 {
		t.Errorf("overlapping tasks = %d, want 0", got)
	}
}

func TestSchedulerSurvivesPanickingTask(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.After(0, func() { panic("boom") })
	ran := make(chan struct{})
	s.After(5*time.Millisecond, func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("scheduler stopped after a panicking task")
	}
}

func TestSchedulerShutdown(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s.Run(ctx)

	// Must not block once the loop has stopped.
	s.After(0, func() { t.Error("task ran after shutdown") })
	time.Sleep(10 * time.Millisecond)
}
