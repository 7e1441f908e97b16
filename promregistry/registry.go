// Package promregistry adapts the instrument Registry contract onto a
// Prometheus registerer. Scalar keys become gauges; summary keys fan out
// to count/sum/min/max/mean gauges; string keys become info-style gauge
// vectors with a single "value" label; traffic lights become gauges with
// a numeric state code (0 red, 1 amber, 2 green). Key names are
// sanitized to the Prometheus metric-name charset.
package promregistry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ygrebnov/instrument"
)

// Registry implements instrument.Registry on top of a
// prometheus.Registerer. It is safe for concurrent use.
type Registry struct {
	reg prometheus.Registerer

	mu   sync.Mutex
	keys map[string]*promKey
}

type promKey struct {
	key        instrument.Key
	collectors []prometheus.Collector
	update     instrument.UpdateFunc
}

// New constructs a Registry publishing to reg (for example
// prometheus.DefaultRegisterer or a prometheus.NewRegistry()).
func New(reg prometheus.Registerer) *Registry {
	return &Registry{reg: reg, keys: make(map[string]*promKey)}
}

// Register implements instrument.Registry.
func (r *Registry) Register(name string, spec instrument.KeySpec, _ instrument.Source) (instrument.Key, instrument.UpdateFunc, error) {
	if name == "" {
		return instrument.Key{}, nil, fmt.Errorf("%w: empty key name", instrument.ErrConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.keys[name]; ok {
		if existing.key.Kind != spec.Kind || existing.key.Units != spec.Units {
			return instrument.Key{}, nil, fmt.Errorf("%w: %q registered as (%s, %s), requested (%s, %s)",
				instrument.ErrTypeMismatch, name, existing.key.Kind, existing.key.Units, spec.Kind, spec.Units)
		}
		return instrument.Key{}, nil, fmt.Errorf("%w: %q", instrument.ErrNamingCollision, name)
	}

	pk, err := r.buildKey(name, spec)
	if err != nil {
		return instrument.Key{}, nil, err
	}
	for i, c := range pk.collectors {
		if rerr := r.reg.Register(c); rerr != nil {
			for j := 0; j < i; j++ {
				r.reg.Unregister(pk.collectors[j])
			}
			if _, already := rerr.(prometheus.AlreadyRegisteredError); already {
				return instrument.Key{}, nil, fmt.Errorf("%w: %q: %v", instrument.ErrNamingCollision, name, rerr)
			}
			return instrument.Key{}, nil, fmt.Errorf("%w: %q: %v", instrument.ErrConfiguration, name, rerr)
		}
	}

	r.keys[name] = pk
	return pk.key, pk.update, nil
}

// Unregister implements instrument.Registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pk, ok := r.keys[name]
	if !ok {
		return fmt.Errorf("%w: %q", instrument.ErrNotRegistered, name)
	}
	for _, c := range pk.collectors {
		r.reg.Unregister(c)
	}
	delete(r.keys, name)
	return nil
}

func (r *Registry) buildKey(name string, spec instrument.KeySpec) (*promKey, error) {
	key := instrument.Key{Name: name, Kind: spec.Kind, Units: spec.Units, Description: spec.Description}
	metric := sanitizeName(name)
	help := spec.Description
	if help == "" {
		help = name
	}
	if spec.Units != "" && spec.Units != instrument.UnitsNone {
		help += " (" + spec.Units.String() + ")"
	}

	switch spec.Kind {
	case instrument.KindInt64, instrument.KindFloat64:
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric, Help: help})
		return &promKey{
			key:        key,
			collectors: []prometheus.Collector{g},
			update: func(v instrument.Value) {
				switch x := v.(type) {
				case instrument.Int64Value:
					g.Set(float64(x))
				case instrument.Float64Value:
					g.Set(float64(x))
				}
			},
		}, nil

	case instrument.KindSummary:
		count := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric + "_count", Help: help})
		sum := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric + "_sum", Help: help})
		minG := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric + "_min", Help: help})
		maxG := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric + "_max", Help: help})
		mean := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric + "_mean", Help: help})
		return &promKey{
			key:        key,
			collectors: []prometheus.Collector{count, sum, minG, maxG, mean},
			update: func(v instrument.Value) {
				sv, ok := v.(instrument.SummaryValue)
				if !ok {
					return
				}
				s := instrument.Summary(sv)
				count.Set(float64(s.Count))
				sum.Set(s.Sum)
				minG.Set(s.Min)
				maxG.Set(s.Max)
				mean.Set(s.Mean())
			},
		}, nil

	case instrument.KindLight:
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: metric, Help: help})
		return &promKey{
			key:        key,
			collectors: []prometheus.Collector{g},
			update: func(v instrument.Value) {
				if lv, ok := v.(instrument.LightValue); ok {
					g.Set(float64(lv))
				}
			},
		}, nil

	case instrument.KindString:
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: metric, Help: help}, []string{"value"})
		return &promKey{
			key:        key,
			collectors: []prometheus.Collector{vec},
			update: func(v instrument.Value) {
				vec.Reset()
				vec.WithLabelValues(v.String()).Set(1)
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported value kind %q for %q", instrument.ErrConfiguration, spec.Kind, name)
	}
}

// sanitizeName maps a key name like "now/requests" onto the Prometheus
// metric-name charset [a-zA-Z_:][a-zA-Z0-9_:]*.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':':
			b.WriteRune(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
