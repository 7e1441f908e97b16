package instrument

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// contribution is a timestamped measurement held inside a sliding
// aggregator until it ages out of the window.
type contribution[T any] struct {
	at time.Time
	v  T
}

// sliding maintains an exact trailing-window aggregate. Contributions
// are kept in insertion order; since the clock is monotonically
// non-decreasing, expiry only ever removes from the front, which bounds
// append+expire to amortized O(1) regardless of occupancy. Eviction
// applies the operation's inverse to the running total instead of
// recomputing it from the remaining contributions; for floating-point
// algebras this trades exactness for performance (see invertSummary).
type sliding[T any] struct {
	op     CombineOp[T]
	window time.Duration
	clk    clock.Clock

	mu    sync.Mutex
	fifo  []contribution[T]
	head  int // index of the oldest live contribution in fifo
	total T
}

func newSliding[T any](op CombineOp[T], window time.Duration, clk clock.Clock) (*sliding[T], error) {
	if err := op.validate(); err != nil {
		return nil, err
	}
	if !op.invertible() {
		return nil, fmt.Errorf("%w: sliding aggregation requires an invertible combine operation", ErrConfiguration)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: non-positive window %v", ErrConfiguration, window)
	}
	return &sliding[T]{op: op, window: window, clk: clk, total: op.Identity}, nil
}

// append adds a contribution stamped with the current time and returns
// the updated trailing-window aggregate.
func (s *sliding[T]) append(v T) T {
	s.mu.Lock()
	now := s.clk.Now()
	s.expireLocked(now)
	s.fifo = append(s.fifo, contribution[T]{at: now, v: v})
	s.total = s.op.Combine(s.total, v)
	out := s.total
	s.mu.Unlock()
	return out
}

// value expires aged contributions and returns the aggregate over
// (now-window, now].
func (s *sliding[T]) value() T {
	s.mu.Lock()
	s.expireLocked(s.clk.Now())
	out := s.total
	s.mu.Unlock()
	return out
}

// len reports the number of live contributions.
func (s *sliding[T]) len() int {
	s.mu.Lock()
	n := len(s.fifo) - s.head
	s.mu.Unlock()
	return n
}

// expireLocked evicts contributions with timestamp at or before
// now-window. Callers must hold s.mu.
func (s *sliding[T]) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	var zero contribution[T]
	for s.head < len(s.fifo) && !s.fifo[s.head].at.After(cutoff) {
		s.total = s.op.Combine(s.total, s.op.Inverse(s.fifo[s.head].v))
		s.fifo[s.head] = zero // release references held by expired entries
		s.head++
	}
	switch {
	case s.head == len(s.fifo):
		s.fifo = s.fifo[:0]
		s.head = 0
	case s.head > 64 && s.head > len(s.fifo)/2:
		// reclaim the expired prefix once it dominates the backing array
		n := copy(s.fifo, s.fifo[s.head:])
		s.fifo = s.fifo[:n]
		s.head = 0
	}
}
