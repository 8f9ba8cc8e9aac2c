// Package session hosts the shopping state of each storefront visitor: the
// cart and wishlist collections, the pending UI signals and the catalog page
// the visitor is browsing.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/collection"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/internal/event"
	"github.com/vanisarees/storefront/internal/hover"
	"github.com/vanisarees/storefront/internal/repository"
	apperrors "github.com/vanisarees/storefront/pkg/errors"
	"github.com/vanisarees/storefront/pkg/logger"
)

// Session is one visitor's shopping state.
type Session struct {
	ID       string
	Cart     *collection.Store[domain.CollectionItem]
	Wishlist *collection.Store[domain.CollectionItem]
	Signals  *catalog.Recorder

	catalogOpts []catalog.Option
	source      catalog.Source

	mu       sync.Mutex
	view     *catalog.Controller
	lastSeen time.Time
	leases   int
}

// Catalog returns the catalog page currently open, or nil.
func (s *Session) Catalog() *catalog.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view
}

// OpenCatalog starts a new catalog page visit for category. The previous
// view is closed, which cancels its hover timer.
func (s *Session) OpenCatalog(category string, opts ...catalog.Option) *catalog.Controller {
	all := make([]catalog.Option, 0, len(s.catalogOpts)+len(opts)+1)
	all = append(all, s.catalogOpts...)
	all = append(all, catalog.WithCategory(category))
	all = append(all, opts...)

	view := catalog.NewController(s.source, s.Cart, s.Wishlist, s.Signals, all...)

	s.mu.Lock()
	prev := s.view
	s.view = view
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return view
}

func (s *Session) touch(now time.Time, lease int) {
	s.mu.Lock()
	s.lastSeen = now
	s.leases += lease
	s.mu.Unlock()
}

// idle reports whether the session has no lease and was last seen before
// cutoff.
func (s *Session) idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.leases == 0 && s.lastSeen.Before(cutoff)
}

// close stops the catalog view and drains both collection writers.
func (s *Session) close() {
	s.mu.Lock()
	view := s.view
	s.view = nil
	s.mu.Unlock()

	if view != nil {
		view.Close()
	}
	s.Cart.Close()
	s.Wishlist.Close()
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithEvents publishes every persisted collection change through p.
func WithEvents(p *event.Producer) Option {
	return func(m *Manager) { m.events = p }
}

// WithPageSize sets the catalog page size of new views.
func WithPageSize(n int) Option {
	return func(m *Manager) { m.pageSize = n }
}

// WithHoverDwell sets the preview dwell of new views.
func WithHoverDwell(d time.Duration) Option {
	return func(m *Manager) { m.hoverOpts = append(m.hoverOpts, hover.WithDwell(d)) }
}

// WithHoverOptions passes options to the hover scheduler of new views.
func WithHoverOptions(opts ...hover.Option) Option {
	return func(m *Manager) { m.hoverOpts = append(m.hoverOpts, opts...) }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns all live sessions. It is safe for concurrent use.
type Manager struct {
	storage   repository.Storage
	source    catalog.Source
	events    *event.Producer
	logger    *slog.Logger
	pageSize  int
	hoverOpts []hover.Option
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a manager persisting collections in storage and
// reading catalog pages from source.
func NewManager(storage repository.Storage, source catalog.Source, opts ...Option) *Manager {
	m := &Manager{
		storage:  storage,
		source:   source,
		logger:   logger.Discard(),
		pageSize: domain.DefaultPageSize,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.New().String()
}

// Get returns the session for id, creating and hydrating it on first use.
// A session returned by Get can still be swept once it goes idle; callers
// that mutate it over a longer span use Acquire.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.get(ctx, id, 0)
}

// Acquire is Get plus a lease: the session is not swept until release is
// called. Release exactly once, when the request is done.
func (m *Manager) Acquire(ctx context.Context, id string) (s *Session, release func(), err error) {
	s, err = m.get(ctx, id, 1)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return s, func() {
		once.Do(func() { s.touch(m.now(), -1) })
	}, nil
}

func (m *Manager) get(ctx context.Context, id string, lease int) (*Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	now := m.now()

	// Lookup and touch happen under m.mu so Sweep never sees a session
	// between the two.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, apperrors.Unavailable("sessions", context.Canceled)
	}
	if s, ok := m.sessions[id]; ok {
		s.touch(now, lease)
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := m.build(ctx, id)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		existing.touch(now, lease)
		m.mu.Unlock()
		s.close()
		return existing, nil
	}
	if m.closed {
		m.mu.Unlock()
		s.close()
		return nil, apperrors.Unavailable("sessions", context.Canceled)
	}
	s.touch(now, lease)
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session started",
		slog.String("session_id", id),
		slog.Int("cart_items", s.Cart.Len()),
		slog.Int("wishlist_items", s.Wishlist.Len()),
	)
	return s, nil
}

func (m *Manager) build(ctx context.Context, id string) *Session {
	l := m.logger.With(slog.String("session_id", id))
	signals := catalog.NewRecorder(catalog.DefaultRecorderCapacity)

	s := &Session{
		ID:      id,
		Signals: signals,
		source:  m.source,
		catalogOpts: []catalog.Option{
			catalog.WithPageSize(m.pageSize),
			catalog.WithLogger(l),
			catalog.WithHoverOptions(m.hoverOpts...),
		},
	}
	s.Cart = m.store(domain.CollectionCart, id, l, func() {
		signals.Emit(catalog.Signal{Kind: catalog.SignalOpenCart})
	})
	s.Wishlist = m.store(domain.CollectionWishlist, id, l, func() {
		signals.Emit(catalog.Signal{Kind: catalog.SignalOpenWishlist})
	})

	s.Cart.Hydrate(ctx)
	s.Wishlist.Hydrate(ctx)
	return s
}

func (m *Manager) store(name, id string, l *slog.Logger, onOpen func()) *collection.Store[domain.CollectionItem] {
	opts := []collection.Option[domain.CollectionItem]{
		collection.WithLogger[domain.CollectionItem](l),
		collection.WithOnOpen[domain.CollectionItem](onOpen),
	}
	if m.events != nil {
		opts = append(opts, collection.WithObserver[domain.CollectionItem](m.events.Observer(name, id)))
	}
	return collection.New[domain.CollectionItem](name, StorageKey(name, id), m.storage, opts...)
}

// StorageKey is the key a session's collection persists under.
func StorageKey(collectionName, sessionID string) string {
	return collectionName + ":" + sessionID
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sweep closes sessions not seen for longer than idle and returns how many
// were closed. Leased sessions are skipped. Collections of closed sessions
// stay persisted and are hydrated again on the next visit.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idle(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		m.logger.Info("idle sessions closed", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}

// Close closes every session and rejects further Get calls.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var g errgroup.Group
	for _, s := range all {
		g.Go(func() error {
			s.close()
			return nil
		})
	}
	_ = g.Wait()
	m.logger.Info("sessions closed", slog.Int("count", len(all)))
}
