// Package engine owns the dashboard's single versioned snapshot. Every mutation reads
// the current snapshot, applies one of the component transitions to a copy and replaces
// the whole snapshot under one lock, then notifies observers in version order.
package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/balance"
	"github.com/bwiize/dashboard/internal/carousel"
	"github.com/bwiize/dashboard/internal/challenge"
	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/wallet"
)

// Default simulated latencies.
const (
	DefaultLoadDelay        = time.Second
	DefaultConnectDelay     = 2 * time.Second
	DefaultCelebrationDelay = 500 * time.Millisecond
)

const maxInbox = 64

// Scheduler runs fn after d. Implementations decide on which goroutine.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Observer receives every published snapshot together with the notifications raised by
// that mutation. Observers must not call back into the Engine synchronously.
type Observer func(snap domain.Snapshot, notes []domain.Notification)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	LoadDelay          time.Duration
	ConnectDelay       time.Duration
	CelebrationDelay   time.Duration
	ChallengesRequired int
	CarouselPages      int
	SwipeThreshold     float64
	DedupChallenges    bool
	Preferences        domain.Preferences

	Scheduler  Scheduler
	Handshaker wallet.Handshaker
	Linker     *balance.Linker
	Clock      func() time.Time
}

type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

func (o Options) withDefaults() Options {
	if o.LoadDelay < 0 {
		o.LoadDelay = 0
	}
	if o.ConnectDelay < 0 {
		o.ConnectDelay = 0
	}
	if o.CelebrationDelay < 0 {
		o.CelebrationDelay = 0
	}
	if o.ChallengesRequired <= 0 {
		o.ChallengesRequired = domain.DefaultChallengesRequired
	}
	if o.CarouselPages <= 0 {
		o.CarouselPages = domain.DefaultCarouselPages
	}
	if o.SwipeThreshold <= 0 {
		o.SwipeThreshold = carousel.DefaultSwipeThreshold
	}
	if o.Preferences.Theme == "" {
		o.Preferences.Theme = domain.ThemeLight
	}
	if o.Scheduler == nil {
		o.Scheduler = timerScheduler{}
	}
	if o.Handshaker == nil {
		o.Handshaker = wallet.NewStaticHandshaker(wallet.DefaultAddress, domain.SafeParse(domain.SeedXRPUSDRate))
	}
	if o.Linker == nil {
		o.Linker = balance.NewLinker(nil)
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// DefaultOptions returns the production latencies.
func DefaultOptions() Options {
	return Options{
		LoadDelay:        DefaultLoadDelay,
		ConnectDelay:     DefaultConnectDelay,
		CelebrationDelay: DefaultCelebrationDelay,
		DedupChallenges:  true,
	}
}

type subscriber struct {
	id int
	fn Observer
}

// Engine is the Financial Activity State Engine.
type Engine struct {
	opts    Options
	counter challenge.Counter
	nav     carousel.Navigator

	mu        sync.Mutex
	snap      domain.Snapshot
	inbox     []domain.Notification
	changed   chan struct{}
	observers []subscriber
	nextSubID int

	// publishMu is taken before mu is released so observers see versions in order.
	publishMu sync.Mutex
}

// New creates an Engine holding the initial, not yet loaded snapshot (version 0).
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:    opts,
		counter: challenge.Counter{Dedup: opts.DedupChallenges},
		nav:     carousel.Navigator{SwipeThreshold: opts.SwipeThreshold},
		changed: make(chan struct{}),
		snap: domain.Snapshot{
			Progress:    challenge.NewProgress(opts.ChallengesRequired),
			Carousel:    carousel.NewState(opts.CarouselPages),
			Preferences: opts.Preferences,
		},
	}
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// Subscribe registers an observer and returns a function that removes it.
func (e *Engine) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSubID++
	id := e.nextSubID
	e.observers = append(e.observers, subscriber{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.observers = slices.DeleteFunc(e.observers, func(s subscriber) bool { return s.id == id })
	}
}

// Await blocks until pred holds for the current snapshot or ctx ends.
func (e *Engine) Await(ctx context.Context, pred func(domain.Snapshot) bool) (domain.Snapshot, error) {
	for {
		e.mu.Lock()
		snap := e.snap.Clone()
		changed := e.changed
		e.mu.Unlock()

		if pred(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-changed:
		}
	}
}

// Notifications drains the one-shot notifications raised since the last call.
func (e *Engine) Notifications() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.inbox
	e.inbox = nil
	return out
}

// effects collects what a mutation wants to happen besides the state change itself.
type effects struct {
	notes     []domain.Notification
	later     []delayed
	unchanged bool
}

type delayed struct {
	d  time.Duration
	fn func()
}

func (fx *effects) notify(kind domain.NotificationKind, amount *decimal.Decimal, msg string) {
	fx.notes = append(fx.notes, domain.Notification{Kind: kind, Amount: amount, Message: msg})
}

func (fx *effects) after(d time.Duration, fn func()) {
	fx.later = append(fx.later, delayed{d: d, fn: fn})
}

// apply runs fn against a copy of the current snapshot. A rejected mutation leaves the
// state untouched; an unchanged one keeps the version.
func (e *Engine) apply(fn func(s *domain.Snapshot, fx *effects) error) (domain.Snapshot, error) {
	e.mu.Lock()
	next := e.snap.Clone()
	var fx effects
	if err := fn(&next, &fx); err != nil {
		cur := e.snap.Clone()
		e.mu.Unlock()
		return cur, err
	}

	if fx.unchanged && len(fx.notes) == 0 {
		cur := e.snap.Clone()
		e.mu.Unlock()
		e.schedule(fx.later)
		return cur, nil
	}

	if !fx.unchanged {
		next.Version = e.snap.Version + 1
		e.snap = next
	}
	published := e.snap.Clone()

	now := e.opts.Clock()
	for i := range fx.notes {
		fx.notes[i].Version = published.Version
		fx.notes[i].At = now
	}
	e.inbox = append(e.inbox, fx.notes...)
	if over := len(e.inbox) - maxInbox; over > 0 {
		e.inbox = slices.Clone(e.inbox[over:])
	}

	close(e.changed)
	e.changed = make(chan struct{})
	observers := slices.Clone(e.observers)

	e.publishMu.Lock()
	e.mu.Unlock()
	for _, o := range observers {
		o.fn(published.Clone(), slices.Clone(fx.notes))
	}
	e.publishMu.Unlock()

	e.schedule(fx.later)
	return published, nil
}

func (e *Engine) schedule(later []delayed) {
	for _, l := range later {
		e.opts.Scheduler.After(l.d, l.fn)
	}
}

func requireLoaded(s *domain.Snapshot) error {
	if !s.Loaded {
		return domain.ErrNotLoaded
	}
	return nil
}
