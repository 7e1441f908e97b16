package instrument

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

// recordingSink collects emitted values for assertions.
type recordingSink struct {
	mu     sync.Mutex
	values []Value
}

func (r *recordingSink) update(v Value) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recordingSink) snapshot() []Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

func TestPublisher_BurstCoalescesToLastValue(t *testing.T) {
	mock := clock.NewMock()
	sink := &recordingSink{}
	p := newPublisher(200*time.Millisecond, mock, sink.update)

	p.publish(Int64Value(1))
	mock.Add(50 * time.Millisecond)
	p.publish(Int64Value(2))
	p.publish(Int64Value(3))

	// nothing emitted before the interval elapses
	require.Empty(t, sink.snapshot())

	mock.Add(200 * time.Millisecond)
	require.Eventually(t, func() bool {
		vs := sink.snapshot()
		return len(vs) == 1 && vs[0] == Int64Value(3)
	}, time.Second, time.Millisecond)

	// a quiet interval produces no further emission
	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	require.Len(t, sink.snapshot(), 1)
}

func TestPublisher_EmitsAgainAfterQuietPeriod(t *testing.T) {
	mock := clock.NewMock()
	sink := &recordingSink{}
	p := newPublisher(100*time.Millisecond, mock, sink.update)

	p.publish(Int64Value(1))
	mock.Add(100 * time.Millisecond)
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)

	p.publish(Int64Value(2))
	mock.Add(100 * time.Millisecond)
	require.Eventually(t, func() bool {
		vs := sink.snapshot()
		return len(vs) == 2 && vs[1] == Int64Value(2)
	}, time.Second, time.Millisecond)
}

func TestPublisher_PublishNowSupersedesPending(t *testing.T) {
	mock := clock.NewMock()
	sink := &recordingSink{}
	p := newPublisher(100*time.Millisecond, mock, sink.update)

	p.publish(Int64Value(1))
	p.publishNow(Int64Value(2))

	vs := sink.snapshot()
	require.Len(t, vs, 1)
	require.Equal(t, Int64Value(2), vs[0])

	// the orphaned timer must not fire a second emission
	mock.Add(200 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	require.Len(t, sink.snapshot(), 1)
}

// A publishNow arriving while a timer emission is mid-delivery must not
// be overtaken by the stale buffered value: deliveries are serialized,
// so the fresh value is always the last one downstream sees.
func TestPublisher_PublishNowNotOvertakenByInFlightTimer(t *testing.T) {
	mock := clock.NewMock()

	var mu sync.Mutex
	var got []Value
	entered := make(chan struct{})
	release := make(chan struct{})
	sink := func(v Value) {
		if v == Int64Value(1) {
			close(entered)
			<-release
		}
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}
	p := newPublisher(100*time.Millisecond, mock, sink)

	p.publish(Int64Value(1))
	mock.Add(100 * time.Millisecond)
	<-entered // timer emission is now inside the sink

	done := make(chan struct{})
	go func() {
		p.publishNow(Int64Value(2))
		close(done)
	}()

	// publishNow waits for the in-flight delivery instead of interleaving
	select {
	case <-done:
		t.Fatal("publishNow completed while a timer emission was mid-delivery")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Value{Int64Value(1), Int64Value(2)}, got)
}

func TestPublisher_CloseSuppressesEmission(t *testing.T) {
	mock := clock.NewMock()
	sink := &recordingSink{}
	p := newPublisher(100*time.Millisecond, mock, sink.update)

	p.publish(Int64Value(1))
	p.close()
	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, sink.snapshot())

	p.publishNow(Int64Value(2))
	require.Empty(t, sink.snapshot())
}
