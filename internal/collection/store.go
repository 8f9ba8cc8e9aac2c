package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/vanisarees/storefront/pkg/errors"
	"github.com/vanisarees/storefront/pkg/logger"
	"github.com/vanisarees/storefront/pkg/validator"

	"github.com/vanisarees/storefront/internal/repository"
)

// DefaultWriteTimeout bounds a single snapshot write.
const DefaultWriteTimeout = 5 * time.Second

// Item is anything that can live in a collection. Key is its identity.
type Item interface {
	Key() string
}

// Observer is notified after every persisted snapshot, whether or not the
// write succeeded.
type Observer[T Item] interface {
	CollectionChanged(ctx context.Context, key string, items []T)
}

// Option configures a Store.
type Option[T Item] func(*Store[T])

// WithLogger sets the store logger.
func WithLogger[T Item](l *slog.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = l }
}

// WithValidator replaces the default item validation.
func WithValidator[T Item](fn func(T) error) Option[T] {
	return func(s *Store[T]) { s.validate = fn }
}

// WithObserver registers an observer for persisted snapshots.
func WithObserver[T Item](o Observer[T]) Option[T] {
	return func(s *Store[T]) { s.observers = append(s.observers, o) }
}

// WithOnOpen registers a callback fired when the panel transitions to open.
func WithOnOpen[T Item](fn func()) Option[T] {
	return func(s *Store[T]) { s.onOpen = fn }
}

// WithWriteTimeout bounds each snapshot write.
func WithWriteTimeout[T Item](d time.Duration) Option[T] {
	return func(s *Store[T]) { s.writeTimeout = d }
}

var errEmptyKey = errors.New("item key is empty")

// Store is a deduplicated, insertion-ordered item list with a transient
// open/closed panel flag. Every change to the list is persisted under one
// storage key by a background writer; the in-memory list stays
// authoritative when persistence fails.
type Store[T Item] struct {
	name         string
	key          string
	storage      repository.Storage
	logger       *slog.Logger
	validate     func(T) error
	observers    []Observer[T]
	onOpen       func()
	writeTimeout time.Duration

	mu     sync.Mutex
	items  []T
	index  map[string]struct{}
	isOpen bool
	closed bool

	w *writer[T]
}

// New creates an empty store named name (used in logs and metrics) that
// persists under key.
func New[T Item](name, key string, storage repository.Storage, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name:         name,
		key:          key,
		storage:      storage,
		logger:       logger.Discard(),
		validate:     defaultValidate[T],
		writeTimeout: DefaultWriteTimeout,
		items:        []T{},
		index:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("collection", name), slog.String("key", key))
	s.w = newWriter(s.write)
	return s
}

func defaultValidate[T Item](item T) error {
	if item.Key() == "" {
		return errEmptyKey
	}
	return validator.Validate(item)
}

// Name returns the collection name.
func (s *Store[T]) Name() string { return s.name }

// Key returns the storage key.
func (s *Store[T]) Key() string { return s.key }

// Hydrate replaces the in-memory items with the persisted ones. A missing key
// or an unreadable value leaves the collection empty; neither is fatal.
func (s *Store[T]) Hydrate(ctx context.Context) {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.DebugContext(ctx, "no persisted collection, starting empty")
		} else {
			persistFailuresTotal.WithLabelValues(s.name, "read").Inc()
			s.logger.WarnContext(ctx, "failed to read persisted collection, starting empty",
				slog.String("error", err.Error()),
			)
		}
		s.Load(nil)
		return
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		persistFailuresTotal.WithLabelValues(s.name, "decode").Inc()
		s.logger.WarnContext(ctx, "failed to decode persisted collection, starting empty",
			slog.String("error", err.Error()),
		)
		s.Load(nil)
		return
	}

	n := s.Load(items)
	s.logger.DebugContext(ctx, "collection hydrated", slog.Int("items", n))
}

// Load replaces the items wholesale without persisting them. Malformed and
// duplicate entries are dropped, keeping the first occurrence. It returns the
// number of items kept.
func (s *Store[T]) Load(items []T) int {
	kept := make([]T, 0, len(items))
	index := make(map[string]struct{}, len(items))
	for _, item := range items {
		if s.validate(item) != nil {
			continue
		}
		if _, dup := index[item.Key()]; dup {
			continue
		}
		index[item.Key()] = struct{}{}
		kept = append(kept, item)
	}

	s.mu.Lock()
	s.items = kept
	s.index = index
	s.mu.Unlock()

	return len(kept)
}

// Add appends item unless an entry with the same key exists. A duplicate or
// malformed item leaves the collection untouched and returns false, as does
// any call after Close.
func (s *Store[T]) Add(item T) bool {
	if err := s.validate(item); err != nil {
		s.logger.Debug("rejected malformed item", slog.String("error", err.Error()))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectLocked("add") {
		return false
	}
	if _, ok := s.index[item.Key()]; ok {
		return false
	}
	s.items = append(s.items, item)
	s.index[item.Key()] = struct{}{}
	s.changedLocked("add")
	return true
}

// Remove deletes the entry with the given key. It returns false when absent
// or after Close.
func (s *Store[T]) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectLocked("remove") {
		return false
	}
	if _, ok := s.index[key]; !ok {
		return false
	}
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.index, key)
	s.changedLocked("remove")
	return true
}

// Clear empties the collection and persists the empty list. It reports
// whether any item was removed; after Close it does nothing.
func (s *Store[T]) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectLocked("clear") {
		return false
	}
	removed := len(s.items) > 0
	s.items = []T{}
	s.index = make(map[string]struct{})
	s.changedLocked("clear")
	return removed
}

// Contains reports whether an entry with key exists.
func (s *Store[T]) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[key]
	return ok
}

// Items returns a copy of the items in insertion order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// IsOpen reports whether the collection panel is open.
func (s *Store[T]) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isOpen
}

// ToggleOpen flips the panel flag and returns the new value. Never persisted.
func (s *Store[T]) ToggleOpen() bool {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	open := s.isOpen
	s.mu.Unlock()

	if open && s.onOpen != nil {
		s.onOpen()
	}
	return open
}

// SetOpen sets the panel flag. Opening an already open panel does not fire
// the open callback again.
func (s *Store[T]) SetOpen(open bool) {
	s.mu.Lock()
	opened := open && !s.isOpen
	s.isOpen = open
	s.mu.Unlock()

	if opened && s.onOpen != nil {
		s.onOpen()
	}
}

// Flush blocks until every queued snapshot has been written.
func (s *Store[T]) Flush() {
	s.w.flush()
}

// Close writes any queued snapshot and stops the background writer. Later
// mutations are rejected so nothing is reported as changed that would not
// be persisted.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.w.close()
}

// Closed reports whether Close has been called.
func (s *Store[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) rejectLocked(op string) bool {
	if s.closed {
		s.logger.Warn("rejected change to closed collection", slog.String("op", op))
	}
	return s.closed
}

// changedLocked queues the current items. It runs under s.mu so snapshots
// reach the writer in mutation order.
func (s *Store[T]) changedLocked(op string) {
	mutationsTotal.WithLabelValues(s.name, op).Inc()
	s.w.enqueue(s.snapshotLocked())
}

// write runs on the writer goroutine.
func (s *Store[T]) write(items []T) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.persist(ctx, items); err != nil {
		s.logger.WarnContext(ctx, "failed to persist collection",
			slog.Int("items", len(items)),
			slog.String("error", err.Error()),
		)
	}
	cancel()

	for _, o := range s.observers {
		s.notify(o, items)
	}
}

// notify gives each observer a deadline of its own, independent of how long
// the storage write took.
func (s *Store[T]) notify(o Observer[T], items []T) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	o.CollectionChanged(ctx, s.key, items)
}

func (s *Store[T]) persist(ctx context.Context, items []T) error {
	start := time.Now()
	defer func() {
		persistDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(items)
	if err != nil {
		persistFailuresTotal.WithLabelValues(s.name, "encode").Inc()
		return fmt.Errorf("marshal %s: %w", s.name, err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		persistFailuresTotal.WithLabelValues(s.name, "write").Inc()
		return fmt.Errorf("store %s: %w", s.name, err)
	}
	return nil
}
