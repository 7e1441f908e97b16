package instrument

import "fmt"

// CombineOp describes how two measurements of type T merge. It is an
// explicit capability object passed at construction; the library never
// picks an operation based on the value type.
//
// Identity and Combine must form a monoid: Combine is associative and
// Combine(Identity, v) == Combine(v, Identity) == v. Inverse is optional;
// when present, Combine(v, Inverse(v)) == Identity must hold (a group),
// which is what allows a sliding aggregator to evict expired
// contributions without recomputing from scratch.
type CombineOp[T any] struct {
	Identity T
	Combine  func(a, b T) T
	// Inverse is nil when the algebra is only a monoid. Instruments that
	// need a sliding view reject such operations at construction.
	Inverse func(a T) T
}

// validate reports a configuration error for an unusable operation.
func (op CombineOp[T]) validate() error {
	if op.Combine == nil {
		return fmt.Errorf("%w: combine operation has no Combine function", ErrConfiguration)
	}
	return nil
}

// invertible reports whether the operation forms a group.
func (op CombineOp[T]) invertible() bool { return op.Inverse != nil }

// SumInt64 returns the additive group over int64, used by counters.
func SumInt64() CombineOp[int64] {
	return CombineOp[int64]{
		Identity: 0,
		Combine:  func(a, b int64) int64 { return a + b },
		Inverse:  func(a int64) int64 { return -a },
	}
}

// LastWriteWins returns the monoid where the most recent value replaces
// the accumulated one, used by simple gauges and traffic lights. It has
// no inverse: a replaced value cannot be recovered, so instruments built
// on it cannot maintain a sliding view.
func LastWriteWins[T any]() CombineOp[T] {
	var zero T
	return CombineOp[T]{
		Identity: zero,
		Combine:  func(_, b T) T { return b },
	}
}

// MergeSummaries returns the merge algebra over statistical summaries,
// used by numeric gauges and timers. Count, Sum and SumSq form an exact
// group; Min and Max merge exactly but do not invert, so a sliding
// aggregate's Min/Max span all contributions ever made. See Summary.
func MergeSummaries() CombineOp[Summary] {
	return CombineOp[Summary]{
		Identity: Summary{},
		Combine:  mergeSummaries,
		Inverse:  invertSummary,
	}
}
