package catalog

import "sync"

// SignalKind names a side effect the rendering surface must carry out.
type SignalKind string

const (
	SignalOpenCart     SignalKind = "open_cart"
	SignalOpenWishlist SignalKind = "open_wishlist"
	SignalShowProduct  SignalKind = "show_product"
	SignalScrollTop    SignalKind = "scroll_top"
)

// Signal is a one-shot instruction for the UI. Slug is set for
// SignalShowProduct only.
type Signal struct {
	Kind SignalKind `json:"kind"`
	Slug string     `json:"slug,omitempty"`
}

// Signals receives UI side effects.
type Signals interface {
	Emit(Signal)
}

// DefaultRecorderCapacity bounds the number of undelivered signals.
const DefaultRecorderCapacity = 32

// Recorder buffers signals until the transport drains them. When full, the
// oldest signal is dropped.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	buf      []Signal
}

// NewRecorder creates a Recorder holding at most capacity signals.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	return &Recorder{capacity: capacity}
}

// Emit appends sig.
func (r *Recorder) Emit(sig Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == r.capacity {
		r.buf = r.buf[1:]
	}
	r.buf = append(r.buf, sig)
}

// Drain returns the buffered signals in emission order and empties the buffer.
func (r *Recorder) Drain() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.buf
	r.buf = nil
	if out == nil {
		return []Signal{}
	}
	return out
}

// Discard drops every signal.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(Signal) {}
