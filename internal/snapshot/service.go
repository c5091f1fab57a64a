package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bwiize/dashboard/internal/domain"
)

// StateSource provides the current dashboard snapshot.
type StateSource interface {
	Snapshot() domain.Snapshot
}

// Service journals dashboard snapshots. The journal is never read back into state.
type Service struct {
	source StateSource
	repo   Repository
	clock  func() time.Time

	mu          sync.Mutex
	lastVersion int64
}

// NewService creates a journal Service.
func NewService(source StateSource, repo Repository) *Service {
	return &Service{source: source, repo: repo, clock: time.Now, lastVersion: -1}
}

// Record stores the current snapshot if its version moved since the last record.
// recorded is false when there was nothing new to store.
func (s *Service) Record(ctx context.Context) (snap domain.Snapshot, recorded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap = s.source.Snapshot()
	if snap.Version == s.lastVersion {
		return snap, false, nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return snap, false, fmt.Errorf("marshaling snapshot: %w", err)
	}
	if _, err := s.repo.Save(ctx, snap.Version, s.clock().UTC(), data); err != nil {
		return snap, false, fmt.Errorf("saving snapshot: %w", err)
	}
	s.lastVersion = snap.Version
	return snap, true, nil
}

// GetLatest retrieves the most recent journal entry.
func (s *Service) GetLatest(ctx context.Context) (*Entry, error) {
	return s.repo.GetLatest(ctx)
}

// List retrieves recent journal entries, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}
