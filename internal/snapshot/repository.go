package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the journal holds no matching entry.
var ErrNotFound = errors.New("journal entry not found")

const defaultListLimit = 30

// Entry is one journaled dashboard snapshot.
type Entry struct {
	ID         int64           `json:"id"`
	Version    int64           `json:"version"`
	RecordedAt time.Time       `json:"recordedAt"`
	Data       json.RawMessage `json:"data"`
}

// Repository stores journal entries. Entries are write-and-inspect only.
type Repository interface {
	Save(ctx context.Context, version int64, recordedAt time.Time, data json.RawMessage) (Entry, error)
	GetLatest(ctx context.Context) (*Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL journal repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, version int64, recordedAt time.Time, data json.RawMessage) (Entry, error) {
	e := Entry{Version: version, RecordedAt: recordedAt, Data: data}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO activity_journal (version, recorded_at, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (version)
		 DO UPDATE SET recorded_at = $2, data = $3::jsonb
		 RETURNING id`,
		version, recordedAt, data).Scan(&e.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("saving journal entry: %w", err)
	}
	return e, nil
}

func (r *PgRepository) GetLatest(ctx context.Context) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx,
		`SELECT id, version, recorded_at, data
		 FROM activity_journal
		 ORDER BY version DESC
		 LIMIT 1`).Scan(&e.ID, &e.Version, &e.RecordedAt, &e.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest journal entry: %w", err)
	}
	return &e, nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, version, recorded_at, data
		 FROM activity_journal
		 ORDER BY version DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Version, &e.RecordedAt, &e.Data); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}

// MemoryRepository keeps the journal in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

// NewMemoryRepository creates an empty in-memory journal.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, version int64, recordedAt time.Time, data json.RawMessage) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := slices.IndexFunc(r.entries, func(e Entry) bool { return e.Version == version }); i >= 0 {
		r.entries[i].RecordedAt = recordedAt
		r.entries[i].Data = slices.Clone(data)
		return r.entries[i], nil
	}

	r.nextID++
	e := Entry{ID: r.nextID, Version: version, RecordedAt: recordedAt, Data: slices.Clone(data)}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *MemoryRepository) GetLatest(_ context.Context) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return nil, ErrNotFound
	}
	latest := slices.MaxFunc(r.entries, func(a, b Entry) int { return int(a.Version - b.Version) })
	return &latest, nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := slices.Clone(r.entries)
	slices.SortFunc(out, func(a, b Entry) int { return int(b.Version - a.Version) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
