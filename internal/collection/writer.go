package collection

import "sync"

// writer runs persistence off the caller's path. Snapshots queued while a
// write is in flight coalesce so only the latest one is written next.
type writer[T Item] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	next   []T
	queued bool
	busy   bool
	closed bool
	done   chan struct{}
	write  func([]T)
}

func newWriter[T Item](write func([]T)) *writer[T] {
	w := &writer[T]{
		done:  make(chan struct{}),
		write: write,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// enqueue replaces any pending snapshot. It reports false once the writer is
// closed.
func (w *writer[T]) enqueue(items []T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	w.next = items
	w.queued = true
	w.cond.Broadcast()
	return true
}

func (w *writer[T]) run() {
	defer close(w.done)

	w.mu.Lock()
	for {
		for !w.queued && !w.closed {
			w.cond.Wait()
		}
		if !w.queued {
			w.mu.Unlock()
			return
		}
		items := w.next
		w.next = nil
		w.queued = false
		w.busy = true
		w.mu.Unlock()

		w.write(items)

		w.mu.Lock()
		w.busy = false
		w.cond.Broadcast()
	}
}

// flush blocks until no snapshot is pending or being written.
func (w *writer[T]) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.queued || w.busy {
		w.cond.Wait()
	}
}

// close writes any pending snapshot and stops the goroutine.
func (w *writer[T]) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	<-w.done
}
