package instrument

import (
	"math"
	"strconv"
)

// Summary is a statistical bundle of float64 measurements: count, sum,
// sum of squares, minimum and maximum. It is the measurement type of
// numeric gauges and timers and is treated as one combinable value; the
// zero Summary is the identity of MergeSummaries.
type Summary struct {
	Count int64
	Sum   float64
	SumSq float64
	Min   float64
	Max   float64
}

// SummaryOf returns the summary of a single sample.
func SummaryOf(v float64) Summary {
	return Summary{Count: 1, Sum: v, SumSq: v * v, Min: v, Max: v}
}

// Mean returns the arithmetic mean, or 0 for an empty summary.
func (s Summary) Mean() float64 {
	if s.Count <= 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the population variance, or 0 for fewer than two samples.
func (s Summary) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	n := float64(s.Count)
	v := s.SumSq/n - (s.Sum/n)*(s.Sum/n)
	// guard against tiny negative results from floating-point cancellation
	return math.Max(v, 0)
}

// mergeSummaries merges two summaries. Summaries with a non-positive
// count (the identity, or an inverted contribution) do not participate
// in the min/max selection.
func mergeSummaries(a, b Summary) Summary {
	out := Summary{
		Count: a.Count + b.Count,
		Sum:   a.Sum + b.Sum,
		SumSq: a.SumSq + b.SumSq,
	}
	switch {
	case a.Count <= 0:
		out.Min, out.Max = b.Min, b.Max
	case b.Count <= 0:
		out.Min, out.Max = a.Min, a.Max
	default:
		out.Min = math.Min(a.Min, b.Min)
		out.Max = math.Max(a.Max, b.Max)
	}
	return out
}

// invertSummary negates the invertible components of a summary. Count,
// Sum and SumSq invert exactly, so sliding means and variances stay
// correct as contributions expire. Min and Max have no inverse: a
// sliding aggregate's Min/Max cover all contributions since creation
// rather than just the trailing window. The incremental running total
// also accumulates floating-point error over time instead of being
// recomputed from the contribution set; both effects are accepted
// trade-offs of amortized-O(1) eviction.
func invertSummary(a Summary) Summary {
	return Summary{
		Count: -a.Count,
		Sum:   -a.Sum,
		SumSq: -a.SumSq,
		Min:   a.Min,
		Max:   a.Max,
	}
}

// SummaryValue is the wire form of a Summary.
type SummaryValue Summary

func (SummaryValue) Kind() ValueKind { return KindSummary }

func (v SummaryValue) String() string {
	s := Summary(v)
	return "count=" + strconv.FormatInt(s.Count, 10) +
		" sum=" + strconv.FormatFloat(s.Sum, 'g', -1, 64) +
		" min=" + strconv.FormatFloat(s.Min, 'g', -1, 64) +
		" max=" + strconv.FormatFloat(s.Max, 'g', -1, 64) +
		" mean=" + strconv.FormatFloat(s.Mean(), 'g', -1, 64)
}

// EncodeSummary encodes a Summary measurement as SummaryValue.
func EncodeSummary(s Summary) Value { return SummaryValue(s) }
