package instrument

import (
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestSliding_RequiresInverse(t *testing.T) {
	mock := clock.NewMock()
	_, err := newSliding(LastWriteWins[string](), time.Second, mock)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSliding_RejectsBadWindow(t *testing.T) {
	mock := clock.NewMock()
	_, err := newSliding(SumInt64(), 0, mock)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSliding_ExpiresOldContributions(t *testing.T) {
	mock := clock.NewMock()
	s, err := newSliding(SumInt64(), time.Second, mock)
	require.NoError(t, err)

	require.Equal(t, int64(10), s.append(10))
	mock.Add(500 * time.Millisecond)
	require.Equal(t, int64(15), s.append(5))

	// first contribution is exactly window old: (T-window, T] excludes it
	mock.Add(500 * time.Millisecond)
	require.Equal(t, int64(5), s.value())
	require.Equal(t, 1, s.len())

	mock.Add(time.Second)
	require.Equal(t, int64(0), s.value())
	require.Equal(t, 0, s.len())
}

// The sliding value always equals a from-scratch recomputation over the
// contributions still inside the window, for random timestamp/value
// sequences.
func TestSliding_MatchesRecomputation(t *testing.T) {
	mock := clock.NewMock()
	const window = 10 * time.Second
	s, err := newSliding(SumInt64(), window, mock)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	type contrib struct {
		at time.Time
		v  int64
	}
	var kept []contrib

	for i := 0; i < 5000; i++ {
		mock.Add(time.Duration(rng.Int63n(int64(800 * time.Millisecond))))
		v := rng.Int63n(100) - 20
		got := s.append(v)
		kept = append(kept, contrib{at: mock.Now(), v: v})

		cutoff := mock.Now().Add(-window)
		var want int64
		live := kept[:0]
		for _, c := range kept {
			if c.at.After(cutoff) {
				want += c.v
				live = append(live, c)
			}
		}
		kept = live
		require.Equal(t, want, got, "step %d", i)
		require.Equal(t, len(kept), s.len(), "step %d", i)
	}
}

func TestSliding_SummaryMomentsExactAfterEviction(t *testing.T) {
	mock := clock.NewMock()
	s, err := newSliding(MergeSummaries(), time.Second, mock)
	require.NoError(t, err)

	s.append(SummaryOf(10))
	mock.Add(600 * time.Millisecond)
	s.append(SummaryOf(2))
	mock.Add(600 * time.Millisecond) // first sample ages out

	got := s.value()
	require.Equal(t, int64(1), got.Count)
	require.InDelta(t, 2.0, got.Sum, 1e-9)
	require.InDelta(t, 2.0, got.Mean(), 1e-9)
	// Min/Max do not invert: they still span the evicted sample
	require.InDelta(t, 10.0, got.Max, 1e-9)
}

func TestSliding_CompactsExpiredPrefix(t *testing.T) {
	mock := clock.NewMock()
	s, err := newSliding(SumInt64(), time.Second, mock)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		s.append(1)
		mock.Add(10 * time.Millisecond)
	}
	// only the last second of contributions is live: appends at 4010..4990ms
	require.Equal(t, int64(99), s.value())
	require.Equal(t, 99, s.len())
	// the expired prefix was reclaimed along the way
	require.Less(t, len(s.fifo), 500)
}
