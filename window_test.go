package instrument

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowed_AppendAccumulates(t *testing.T) {
	w := newWindowed(SumInt64())
	require.Equal(t, int64(0), w.now())
	require.Equal(t, int64(0), w.previous())

	w.append(1)
	w.append(1)
	require.Equal(t, int64(3), w.append(1))
	require.Equal(t, int64(3), w.now())
	require.Equal(t, int64(0), w.previous())
}

func TestWindowed_TickCapturesAndResets(t *testing.T) {
	w := newWindowed(SumInt64())
	w.append(5)

	require.Equal(t, int64(5), w.tick())
	require.Equal(t, int64(0), w.now())
	require.Equal(t, int64(5), w.previous())

	// previous is stable until the next tick
	w.append(2)
	require.Equal(t, int64(5), w.previous())
	require.Equal(t, int64(2), w.tick())
	require.Equal(t, int64(2), w.previous())
}

func TestWindowed_EmptyWindowsHoldIdentity(t *testing.T) {
	w := newWindowed(SumInt64())
	w.append(9)
	w.tick()
	require.Equal(t, int64(9), w.previous())

	// several ticks with zero appends: previous holds identity
	w.tick()
	w.tick()
	require.Equal(t, int64(0), w.previous())
	require.Equal(t, int64(0), w.now())
}

func TestWindowed_LastWriteWins(t *testing.T) {
	w := newWindowed(LastWriteWins[string]())
	w.append("red")
	w.append("green")
	require.Equal(t, "green", w.now())
	w.tick()
	require.Equal(t, "green", w.previous())
	require.Equal(t, "", w.now())
}

// Every append lands in exactly one window: under concurrent appends and
// ticks, the captured windows plus the in-progress window account for
// every appended unit exactly once.
func TestWindowed_NoAppendLostOrSplitAcrossTicks(t *testing.T) {
	w := newWindowed(SumInt64())

	const (
		appenders = 8
		perG      = 10000
	)

	var captured atomic.Int64
	stop := make(chan struct{})
	tickerDone := make(chan struct{})
	go func() {
		defer close(tickerDone)
		for {
			select {
			case <-stop:
				return
			default:
				captured.Add(w.tick())
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(appenders)
	for i := 0; i < appenders; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				w.append(1)
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-tickerDone

	total := captured.Load() + w.now()
	require.Equal(t, int64(appenders*perG), total)
}
