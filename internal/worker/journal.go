package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwiize/dashboard/internal/domain"
)

// SnapshotRecorder journals the current dashboard snapshot.
type SnapshotRecorder interface {
	Record(ctx context.Context) (domain.Snapshot, bool, error)
}

// AfterRecordHook is called after each snapshot that was actually recorded.
type AfterRecordHook interface {
	Export(ctx context.Context, snap domain.Snapshot) error
}

// JournalWorker periodically records dashboard snapshots.
type JournalWorker struct {
	recorder SnapshotRecorder
	interval time.Duration
	hook     AfterRecordHook // optional
}

// NewJournalWorker creates a new JournalWorker with an optional post-record hook.
func NewJournalWorker(recorder SnapshotRecorder, interval time.Duration, hook AfterRecordHook) *JournalWorker {
	return &JournalWorker{
		recorder: recorder,
		interval: interval,
		hook:     hook,
	}
}

func (w *JournalWorker) runHook(ctx context.Context, snap domain.Snapshot) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, snap); err != nil {
		slog.Error("JournalWorker: export hook failed", "error", err)
	} else {
		slog.Info("JournalWorker: export hook completed", "version", snap.Version)
	}
}

func (w *JournalWorker) record(ctx context.Context) {
	snap, recorded, err := w.recorder.Record(ctx)
	switch {
	case err != nil:
		slog.Error("JournalWorker: record failed", "error", err)
	case !recorded:
		slog.Debug("JournalWorker: no new version", "version", snap.Version)
	default:
		slog.Info("JournalWorker: snapshot recorded", "version", snap.Version)
		w.runHook(ctx, snap)
	}
}

// Run starts the journal worker loop. It blocks until the context is cancelled.
func (w *JournalWorker) Run(ctx context.Context) {
	slog.Info("JournalWorker: starting", "interval", w.interval)

	w.record(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("JournalWorker: shutting down")
			return
		case <-ticker.C:
			w.record(ctx)
		}
	}
}
