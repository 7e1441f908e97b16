package instrument

import (
	"time"

	"go.uber.org/multierr"
)

// Edge instruments a directed connection between two components. It is a
// composite delegating to four sub-instruments registered under derived
// labels:
//
//	<label>/origin      — gauge holding the origin name
//	<label>/destination — gauge holding the destination name
//	<label>/timer       — timer for traffic crossing the edge (key triple)
//	<label>/status      — traffic light for the edge's health
//
// Construction is all-or-nothing across all six derived keys.
type Edge struct {
	origin      *Gauge[string]
	destination *Gauge[string]
	timer       *Timer
	status      *TrafficLight
}

// Edge constructs an edge named label from origin to destination.
func (f *Factory) Edge(label, origin, destination string, opts ...Option) (*Edge, error) {
	if _, err := f.resolveOptions(label, opts); err != nil {
		return nil, err
	}

	e := &Edge{}
	var registered []Key
	rollback := func(err error) error {
		// construction already failed; rollback errors ride along
		return multierr.Append(err, f.unregisterKeys(registered))
	}

	var err error
	e.origin, err = NewGauge(f, label+"/origin", EncodeString, origin, opts...)
	if err != nil {
		return nil, rollback(err)
	}
	registered = append(registered, e.origin.Key())

	e.destination, err = NewGauge(f, label+"/destination", EncodeString, destination, opts...)
	if err != nil {
		return nil, rollback(err)
	}
	registered = append(registered, e.destination.Key())

	e.timer, err = f.Timer(label+"/timer", opts...)
	if err != nil {
		return nil, rollback(err)
	}
	registered = append(registered, e.timer.Keys()...)

	e.status, err = f.TrafficLight(label+"/status", opts...)
	if err != nil {
		return nil, rollback(err)
	}

	return e, nil
}

// RecordDuration records one traversal of the edge.
func (e *Edge) RecordDuration(elapsed time.Duration) { e.timer.RecordDuration(elapsed) }

// SetStatus changes the edge's health indication.
func (e *Edge) SetStatus(l Light) { e.status.Set(l) }

// SetOrigin renames the edge's origin.
func (e *Edge) SetOrigin(origin string) { e.origin.Set(origin) }

// SetDestination renames the edge's destination.
func (e *Edge) SetDestination(destination string) { e.destination.Set(destination) }

// Timer exposes the edge's timer view.
func (e *Edge) Timer() *Timer { return e.timer }

// Status returns the current health indication.
func (e *Edge) Status() Light { return e.status.Value() }

// Keys returns all keys registered for the edge.
func (e *Edge) Keys() []Key {
	out := []Key{e.origin.Key(), e.destination.Key()}
	out = append(out, e.timer.Keys()...)
	out = append(out, e.status.Key())
	return out
}
