package instrument

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Counter counts occurrences per window. It publishes the
// now/previous/sliding key triple under the sum combine operation.
type Counter struct {
	p *PeriodicGauge[int64]
}

// Counter constructs a counter named label with the given initial count
// (usually 0). Updates are deltas merged by addition.
func (f *Factory) Counter(label string, initial int64, opts ...Option) (*Counter, error) {
	p, err := NewPeriodicGauge(f, label, SumInt64(), EncodeInt64, initial, opts...)
	if err != nil {
		return nil, err
	}
	return &Counter{p: p}, nil
}

// Append adds delta to the current window's count.
func (c *Counter) Append(delta int64) { c.p.Append(delta) }

func (c *Counter) Now() int64      { return c.p.Now() }
func (c *Counter) Previous() int64 { return c.p.Previous() }
func (c *Counter) Sliding() int64  { return c.p.Sliding() }
func (c *Counter) Keys() []Key     { return c.p.Keys() }

// Gauge publishes the latest set value under the single key now/<label>.
// Its algebra is last-write-wins, which has no inverse, so a gauge has
// no previous or sliding view. T and its wire encoding are chosen
// explicitly at construction.
type Gauge[T any] struct {
	key Key
	enc Encoder[T]
	pub *publisher

	mu  sync.Mutex
	cur T
}

// NewGauge constructs a gauge named label holding values of type T,
// encoded by enc. The initial value is published before the update hook
// is exposed.
func NewGauge[T any](f *Factory, label string, enc Encoder[T], initial T, opts ...Option) (*Gauge[T], error) {
	cfg, err := f.resolveOptions(label, opts)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errNilEncoder(label)
	}

	g := &Gauge[T]{enc: enc, cur: initial}
	spec := KeySpec{Kind: enc(initial).Kind(), Units: cfg.units, Description: cfg.description}
	keys, updates, err := f.registerKeys([]keyReg{
		{name: nowKey(label), spec: spec, source: func() Value { return g.enc(g.Value()) }},
	})
	if err != nil {
		return nil, err
	}
	g.key = keys[0]
	g.pub = newPublisher(cfg.bufferInterval, f.clk, updates[0])
	f.addCloser(g.pub.close)

	g.pub.publishNow(enc(initial))
	return g, nil
}

// Set replaces the gauge's value; publication is rate-limited and always
// carries the most recent value.
func (g *Gauge[T]) Set(v T) {
	g.mu.Lock()
	g.cur = v
	g.mu.Unlock()
	g.pub.publish(g.enc(v))
}

// Value returns the most recently set value.
func (g *Gauge[T]) Value() T {
	g.mu.Lock()
	out := g.cur
	g.mu.Unlock()
	return out
}

func (g *Gauge[T]) Key() Key { return g.key }

// NumericGauge tracks a statistical summary of set values. Each Set
// contributes one sample to the now/previous/sliding summary triple
// under the summary-merge combine operation.
type NumericGauge struct {
	p *PeriodicGauge[Summary]
}

// NumericGauge constructs a numeric gauge named label. The first window
// starts empty; no synthetic sample is recorded at construction.
func (f *Factory) NumericGauge(label string, opts ...Option) (*NumericGauge, error) {
	op := MergeSummaries()
	p, err := NewPeriodicGauge(f, label, op, EncodeSummary, op.Identity, opts...)
	if err != nil {
		return nil, err
	}
	return &NumericGauge{p: p}, nil
}

// Set records v as one sample in the current and trailing windows.
func (n *NumericGauge) Set(v float64) { n.p.Append(SummaryOf(v)) }

func (n *NumericGauge) Now() Summary      { return n.p.Now() }
func (n *NumericGauge) Previous() Summary { return n.p.Previous() }
func (n *NumericGauge) Sliding() Summary  { return n.p.Sliding() }
func (n *NumericGauge) Keys() []Key       { return n.p.Keys() }

// Timer records durations as millisecond summaries over the
// now/previous/sliding triple.
type Timer struct {
	p   *PeriodicGauge[Summary]
	clk clock.Clock
}

// Timer constructs a timer named label. Units default to
// UnitsMilliseconds unless overridden.
func (f *Factory) Timer(label string, opts ...Option) (*Timer, error) {
	opts = append([]Option{WithUnits(UnitsMilliseconds)}, opts...)
	op := MergeSummaries()
	p, err := NewPeriodicGauge(f, label, op, EncodeSummary, op.Identity, opts...)
	if err != nil {
		return nil, err
	}
	return &Timer{p: p, clk: f.clk}, nil
}

// RecordDuration records one elapsed duration, converted to milliseconds.
func (t *Timer) RecordDuration(elapsed time.Duration) {
	t.p.Append(SummaryOf(float64(elapsed) / float64(time.Millisecond)))
}

// Time runs fn and records its elapsed duration.
func (t *Timer) Time(fn func()) {
	start := t.clk.Now()
	fn()
	t.RecordDuration(t.clk.Since(start))
}

func (t *Timer) Now() Summary      { return t.p.Now() }
func (t *Timer) Previous() Summary { return t.p.Previous() }
func (t *Timer) Sliding() Summary  { return t.p.Sliding() }
func (t *Timer) Keys() []Key       { return t.p.Keys() }

// Light is a three-state health indicator value.
type Light int

const (
	LightRed Light = iota
	LightAmber
	LightGreen
)

func (l Light) String() string {
	switch l {
	case LightRed:
		return "red"
	case LightAmber:
		return "amber"
	case LightGreen:
		return "green"
	default:
		return "unknown"
	}
}

// LightValue is the wire form of a Light.
type LightValue Light

func (LightValue) Kind() ValueKind  { return KindLight }
func (v LightValue) String() string { return Light(v).String() }

// EncodeLight encodes a Light measurement as LightValue.
func EncodeLight(l Light) Value { return LightValue(l) }

// TrafficLight is a gauge restricted to the Red/Amber/Green value set,
// published under now/<label> with an initial value of Red.
type TrafficLight struct {
	g *Gauge[Light]
}

// TrafficLight constructs a traffic light named label. Units default to
// UnitsTrafficLight unless overridden.
func (f *Factory) TrafficLight(label string, opts ...Option) (*TrafficLight, error) {
	opts = append([]Option{WithUnits(UnitsTrafficLight)}, opts...)
	g, err := NewGauge(f, label, EncodeLight, LightRed, opts...)
	if err != nil {
		return nil, err
	}
	return &TrafficLight{g: g}, nil
}

// Set changes the light's state.
func (t *TrafficLight) Set(l Light) { t.g.Set(l) }

// Value returns the current state.
func (t *TrafficLight) Value() Light { return t.g.Value() }

func (t *TrafficLight) Key() Key { return t.g.Key() }
