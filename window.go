package instrument

import "sync"

// windowed couples a tumbling accumulator with the lagged snapshot of
// the most recently completed window. A single mutex covers both, so
// tick's capture-then-reset is atomic relative to concurrent appends:
// no append is ever observed between the capture and the reset, and
// every append lands in exactly one window.
type windowed[T any] struct {
	op CombineOp[T]

	mu   sync.Mutex
	cur  T // in-progress window, combine of all appends since the last tick
	prev T // terminal value of the most recently completed window
}

func newWindowed[T any](op CombineOp[T]) *windowed[T] {
	return &windowed[T]{op: op, cur: op.Identity, prev: op.Identity}
}

// append merges v into the current window and returns the new current
// value so callers can publish without a second lock acquisition.
func (w *windowed[T]) append(v T) T {
	w.mu.Lock()
	w.cur = w.op.Combine(w.cur, v)
	out := w.cur
	w.mu.Unlock()
	return out
}

// tick captures the current window as the lagged snapshot and resets the
// accumulator to identity, returning the captured value. A window with
// zero appends captures identity.
func (w *windowed[T]) tick() T {
	w.mu.Lock()
	w.prev = w.cur
	w.cur = w.op.Identity
	out := w.prev
	w.mu.Unlock()
	return out
}

func (w *windowed[T]) now() T {
	w.mu.Lock()
	out := w.cur
	w.mu.Unlock()
	return out
}

func (w *windowed[T]) previous() T {
	w.mu.Lock()
	out := w.prev
	w.mu.Unlock()
	return out
}
