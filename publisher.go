package instrument

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// publisher coalesces bursts of updates so the downstream sink sees at
// most one value per interval, always the most recently observed one.
// The first update of a quiet period arms a timer; further updates
// within the interval only replace the pending value. An interval with
// no updates produces no emission. publish never blocks the caller
// beyond a short critical section.
type publisher struct {
	interval time.Duration
	clk      clock.Clock
	sink     UpdateFunc

	// deliver serializes sink calls: a publishNow arriving while a timer
	// emission is in flight waits for it instead of being overtaken by
	// the stale buffered value. Acquired before mu; sinks never block.
	deliver sync.Mutex

	mu     sync.Mutex
	latest Value
	armed  bool
	gen    uint64 // invalidates in-flight timers after publishNow/close
	closed bool
}

func newPublisher(interval time.Duration, clk clock.Clock, sink UpdateFunc) *publisher {
	return &publisher{interval: interval, clk: clk, sink: sink}
}

// publish records v as the pending value and arms the interval timer if
// none is pending.
func (p *publisher) publish(v Value) {
	p.mu.Lock()
	p.latest = v
	if p.armed || p.closed {
		p.mu.Unlock()
		return
	}
	p.armed = true
	gen := p.gen
	t := p.clk.Timer(p.interval)
	p.mu.Unlock()

	go p.emitAfter(t, gen)
}

func (p *publisher) emitAfter(t *clock.Timer, gen uint64) {
	<-t.C

	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	if p.gen != gen || p.closed {
		p.mu.Unlock()
		return
	}
	v := p.latest
	p.armed = false
	p.mu.Unlock()

	p.sink(v)
}

// publishNow delivers v to the sink immediately, superseding any pending
// emission. Used for the establish-initial-value write at construction
// and for window-tick publishes, which are already bounded to one per
// window.
func (p *publisher) publishNow(v Value) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.latest = v
	p.armed = false
	p.gen++ // orphan any in-flight timer goroutine
	p.mu.Unlock()

	p.sink(v)
}

// close suppresses all future emissions. Pending timer goroutines drain
// harmlessly.
func (p *publisher) close() {
	p.mu.Lock()
	p.closed = true
	p.gen++
	p.mu.Unlock()
}
