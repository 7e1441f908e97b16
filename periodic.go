package instrument

// PeriodicGauge publishes three time-windowed views of an appended
// measurement stream under a stable key triple:
//
//	now/<label>      — combine of all appends in the in-progress window
//	previous/<label> — terminal value of the most recently completed window
//	sliding/<label>  — aggregate over the trailing window
//
// It is the generalization shared by Counter, NumericGauge and Timer,
// which differ only in the combine operation, encoder and update surface
// they supply. The combine operation must be invertible because of the
// sliding view.
//
// Append never blocks beyond short critical sections. now and sliding
// publishes are rate-limited to the instrument's buffer interval; the
// window tick publishes all three views immediately, so previous becomes
// visible exactly at the tick rather than one buffer interval later.
type PeriodicGauge[T any] struct {
	label string
	keys  []Key
	enc   Encoder[T]

	win *windowed[T]
	sld *sliding[T]

	nowPub      *publisher
	previousPub *publisher
	slidingPub  *publisher
}

// NewPeriodicGauge registers the now/previous/sliding key triple for
// label and starts the instrument's window tick loop. initial is merged
// into the first window as an establish-initial-value write, making the
// initial state visible before any caller update; pass op.Identity when
// the instrument kind has no meaningful initial measurement.
//
// Registration is all-or-nothing: on any failure no keys remain
// registered and the error (ErrNamingCollision, ErrTypeMismatch or
// ErrConfiguration) is returned.
func NewPeriodicGauge[T any](f *Factory, label string, op CombineOp[T], enc Encoder[T], initial T, opts ...Option) (*PeriodicGauge[T], error) {
	cfg, err := f.resolveOptions(label, opts)
	if err != nil {
		return nil, err
	}
	if err := op.validate(); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errNilEncoder(label)
	}

	sld, err := newSliding(op, cfg.window, f.clk)
	if err != nil {
		return nil, err
	}

	g := &PeriodicGauge[T]{
		label: label,
		enc:   enc,
		win:   newWindowed(op),
		sld:   sld,
	}

	kind := enc(op.Identity).Kind()
	spec := KeySpec{Kind: kind, Units: cfg.units, Description: cfg.description}
	keys, updates, err := f.registerKeys([]keyReg{
		{name: nowKey(label), spec: spec, source: func() Value { return g.enc(g.win.now()) }},
		{name: previousKey(label), spec: spec, source: func() Value { return g.enc(g.win.previous()) }},
		{name: slidingKey(label), spec: spec, source: func() Value { return g.enc(g.sld.value()) }},
	})
	if err != nil {
		return nil, err
	}
	g.keys = keys
	g.nowPub = newPublisher(cfg.bufferInterval, f.clk, updates[0])
	g.previousPub = newPublisher(cfg.bufferInterval, f.clk, updates[1])
	g.slidingPub = newPublisher(cfg.bufferInterval, f.clk, updates[2])
	f.addCloser(g.nowPub.close)
	f.addCloser(g.previousPub.close)
	f.addCloser(g.slidingPub.close)

	// establish initial value before exposing the update hook
	g.win.append(initial)
	g.sld.append(initial)
	g.nowPub.publishNow(g.enc(g.win.now()))
	g.previousPub.publishNow(g.enc(g.win.previous()))
	g.slidingPub.publishNow(g.enc(g.sld.value()))

	f.runTicker(cfg.window, g.tick)
	return g, nil
}

// Append merges v into the current and trailing windows and schedules
// rate-limited publishes of the affected views.
func (g *PeriodicGauge[T]) Append(v T) {
	nowV := g.win.append(v)
	sldV := g.sld.append(v)
	g.nowPub.publish(g.enc(nowV))
	g.slidingPub.publish(g.enc(sldV))
}

// tick rolls the tumbling window over and publishes all three views.
func (g *PeriodicGauge[T]) tick() {
	prev := g.win.tick()
	g.previousPub.publishNow(g.enc(prev))
	g.nowPub.publishNow(g.enc(g.win.now()))
	g.slidingPub.publishNow(g.enc(g.sld.value()))
}

// Now returns the in-progress window's accumulated value.
func (g *PeriodicGauge[T]) Now() T { return g.win.now() }

// Previous returns the terminal value of the most recently completed window.
func (g *PeriodicGauge[T]) Previous() T { return g.win.previous() }

// Sliding returns the aggregate over the trailing window.
func (g *PeriodicGauge[T]) Sliding() T { return g.sld.value() }

// Keys returns the instrument's registered keys in now/previous/sliding order.
func (g *PeriodicGauge[T]) Keys() []Key {
	out := make([]Key, len(g.keys))
	copy(out, g.keys)
	return out
}
