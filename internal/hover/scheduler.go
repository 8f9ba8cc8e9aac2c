// Package hover delays a media preview until the pointer has rested on one
// item for a minimum dwell time.
package hover

import (
	"sync"
	"time"
)

// DefaultDwell is the minimum continuous hover before a preview activates.
const DefaultDwell = 2000 * time.Millisecond

// State of the scheduler.
type State int

const (
	Idle State = iota
	Pending
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDwell overrides DefaultDwell.
func WithDwell(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.dwell = d
		}
	}
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = fn }
}

// OnChange is called with the item id when a preview activates and with an
// empty string when an active preview ends. It runs without the scheduler
// lock held.
func OnChange(fn func(activeID string)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

// Scheduler tracks Idle, Pending(id) and Active(id). At most one timer is
// outstanding; every transition stops it before arming another, and a
// generation counter drops callbacks that fired concurrently with Stop.
type Scheduler struct {
	dwell     time.Duration
	afterFunc AfterFunc
	onChange  func(string)

	mu     sync.Mutex
	state  State
	target string
	timer  Timer
	gen    uint64
	closed bool
}

// New returns an idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		dwell:     DefaultDwell,
		afterFunc: stdAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dwell returns the configured dwell time.
func (s *Scheduler) Dwell() time.Duration { return s.dwell }

// Enter records the pointer entering item id. Entering the item that is
// already pending or active is a no-op.
func (s *Scheduler) Enter(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	if s.closed || (s.state != Idle && s.target == id) {
		s.mu.Unlock()
		return
	}
	wasActive := s.state == Active
	s.stopLocked()
	s.state = Pending
	s.target = id
	gen := s.gen
	s.timer = s.afterFunc(s.dwell, func() { s.fire(gen) })
	s.mu.Unlock()

	if wasActive {
		s.notify("")
	}
}

// Leave records the pointer leaving the current item.
func (s *Scheduler) Leave() {
	s.mu.Lock()
	wasActive := s.state == Active
	s.stopLocked()
	s.state = Idle
	s.target = ""
	s.mu.Unlock()

	if wasActive {
		s.notify("")
	}
}

// Close cancels any outstanding timer. The scheduler ignores all later
// events.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.state = Idle
	s.target = ""
	s.closed = true
}

// Active returns the id being previewed, or "" when no preview is active.
func (s *Scheduler) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return ""
	}
	return s.target
}

// State returns the current state and the item it refers to.
func (s *Scheduler) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state, s.target
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != Pending {
		s.mu.Unlock()
		return
	}
	s.state = Active
	s.timer = nil
	id := s.target
	s.mu.Unlock()

	s.notify(id)
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) notify(id string) {
	if s.onChange != nil {
		s.onChange(id)
	}
}
