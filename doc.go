/*
Package instrument is a small, concurrency-safe windowed instrumentation library for Go.

# Overview

Application code emits raw measurements (counts, gauge sets, durations) and the
library derives three standard time-windowed views of each metric, publishing
each under a stable key to a registry:

  - now/<label>      — combine of all updates in the in-progress window
  - previous/<label> — terminal value of the most recently completed window
  - sliding/<label>  — exact aggregate over the trailing window

The library is organized around three layers:

1. Windowing primitives. A tumbling accumulator coupled with a lagged snapshot
(reset-and-capture atomic relative to concurrent appends), and a sliding
aggregator that keeps timestamped contributions in FIFO order and evicts
expired ones by applying the combine operation's algebraic inverse, bounding
append+expire to amortized O(1).

2. Combine algebra. Every windowed primitive is parametrized by an explicit
CombineOp capability object {identity, combine, optional inverse} passed at
construction — sum for counters, last-write-wins for gauges, statistical merge
for numeric gauges and timers. Sliding aggregation requires the inverse and is
rejected at construction without one.

3. Instrument facade. A Factory binds a Registry, a default window, a default
buffer interval, and a clock, and constructs typed instruments:

	f.Counter(label, initial, opts...)                     // Append(delta), sum combine, key triple
	f.NumericGauge(label, opts...)                         // Set(value), summary merge, key triple
	f.Timer(label, opts...)                                // RecordDuration(elapsed), summary in ms, key triple
	f.TrafficLight(label, opts...)                         // Set(Red|Amber|Green), now-only, initial Red
	f.Edge(label, origin, destination, opts...)            // composite of two gauges, a timer and a light
	NewGauge[T](f, label, enc, initial, opts...)           // Set(value), last-write-wins, now-only
	NewPeriodicGauge[T](f, label, op, enc, initial, ...)   // the generalization behind the typed kinds

Every factory call performs one establish-initial-value write before exposing
the update hook, registers its keys all-or-nothing (a partial failure rolls
back), and fails fast with ErrNamingCollision, ErrTypeMismatch or
ErrConfiguration. Steady-state update calls never fail.

Publication to the registry is decoupled from update frequency by a
rate-limited publisher: at most one downstream emission per buffer interval,
always carrying the latest value, and none for quiet intervals. Window ticks
publish all three views immediately, so previous becomes visible exactly at
the tick.

# Registry

The registry is external to this core. It owns keys and routes updates:

	type Registry interface {
	  Register(name string, spec KeySpec, source Source) (Key, UpdateFunc, error)
	  Unregister(name string) error
	}

BasicRegistry is an in-memory reference implementation (with Inspector read
access) suitable for tests and lightweight apps; NewNoopRegistry discards
everything; package promregistry adapts a prometheus.Registerer. How and
whether values leave the process is entirely the registry's concern.

# Time

All timers and tickers come from an injected github.com/benbjohnson/clock
Clock (WithClock); tests drive window boundaries and buffer intervals
deterministically with clock.NewMock().

# Examples

	reg := instrument.NewBasicRegistry()
	f, err := instrument.New(reg,
	    instrument.WithDefaultWindow(30*time.Second),
	    instrument.WithDefaultBufferInterval(200*time.Millisecond),
	)
	if err != nil { ... }

	requests, err := f.Counter("requests", 0, instrument.WithUnits(instrument.UnitsCount))
	if err != nil { ... }
	requests.Append(1)

	latency, err := f.Timer("latency")
	if err != nil { ... }
	latency.RecordDuration(2 * time.Millisecond)

# Build and test

- Run unit tests:

	go test ./...

- Run with the race detector (enables stricter invariant behavior):

	go test -race ./...

- Enable debug build tag (debug invariants enabled):

	go test -tags=debug ./...

# Notes

- Instruments are created once and persist for the process lifetime; Factory.Close
stops window tick loops for orderly shutdown but does not unregister keys.

- A sliding aggregate's running total is maintained incrementally, never
recomputed from the contribution set. For floating-point algebras this is a
known drift risk; additionally, Summary Min/Max have no inverse and span all
contributions ever made rather than the trailing window.
*/
package instrument
