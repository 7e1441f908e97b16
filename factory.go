package instrument

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
)

// Defaults applied by New when not overridden by factory options.
const (
	DefaultWindow         = 30 * time.Second
	DefaultBufferInterval = 200 * time.Millisecond
)

type factoryConfig struct {
	window         time.Duration
	bufferInterval time.Duration
	clk            clock.Clock
	logger         logger
}

// FactoryOption configures a Factory constructed by New.
type FactoryOption func(*factoryConfig)

// WithDefaultWindow sets the default tumbling-reset period and sliding
// window length for instruments that do not override it.
func WithDefaultWindow(d time.Duration) FactoryOption {
	return func(cfg *factoryConfig) { cfg.window = d }
}

// WithDefaultBufferInterval sets the default rate-limiting interval for
// instruments that do not override it.
func WithDefaultBufferInterval(d time.Duration) FactoryOption {
	return func(cfg *factoryConfig) { cfg.bufferInterval = d }
}

// WithClock injects the time source driving window ticks, sliding-window
// expiry, and rate-limit timers. Tests pass clock.NewMock(); the default
// is the wall clock.
func WithClock(c clock.Clock) FactoryOption {
	return func(cfg *factoryConfig) { cfg.clk = c }
}

// WithFactoryLogger sets the logger used for internal diagnostics.
// See NewZapLogger for a zap adapter.
func WithFactoryLogger(l logger) FactoryOption {
	return func(cfg *factoryConfig) { cfg.logger = l }
}

// Factory is the single construction point for instruments. It binds a
// registry, a default window, a default buffer interval, a clock, and a
// logger. Instruments created through one factory share its clock and
// registry but own their windowed state exclusively.
type Factory struct {
	reg            Registry
	clk            clock.Clock
	log            logger
	window         time.Duration
	bufferInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	closers []func()
}

// New constructs a Factory. It fails with ErrConfiguration for a nil
// registry or non-positive durations.
func New(reg Registry, opts ...FactoryOption) (*Factory, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrConfiguration)
	}
	cfg := &factoryConfig{
		window:         DefaultWindow,
		bufferInterval: DefaultBufferInterval,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.window <= 0 {
		return nil, fmt.Errorf("%w: non-positive window %v", ErrConfiguration, cfg.window)
	}
	if cfg.bufferInterval <= 0 {
		return nil, fmt.Errorf("%w: non-positive buffer interval %v", ErrConfiguration, cfg.bufferInterval)
	}
	if cfg.clk == nil {
		cfg.clk = clock.New()
	}
	if cfg.logger == nil {
		cfg.logger = newNoopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Factory{
		reg:            reg,
		clk:            cfg.clk,
		log:            cfg.logger,
		window:         cfg.window,
		bufferInterval: cfg.bufferInterval,
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// Close stops all window tick loops and rate-limit publishers started by
// this factory's instruments and waits for the tick loops to exit.
// Instruments remain readable but stop rolling over windows and stop
// publishing. Close is idempotent.
func (f *Factory) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	closers := f.closers
	f.closers = nil
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
	for _, c := range closers {
		c()
	}
	f.log.Debugf("instrument factory closed")
}

// addCloser registers a shutdown hook run by Close. A hook registered
// after Close has already drained the list runs immediately, so no
// publisher outlives the factory.
func (f *Factory) addCloser(c func()) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		c()
		return
	}
	f.closers = append(f.closers, c)
	f.mu.Unlock()
}

// runTicker starts a loop invoking fn at every window boundary until the
// factory is closed.
func (f *Factory) runTicker(window time.Duration, fn func()) {
	t := f.clk.Ticker(window)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer t.Stop()
		for {
			select {
			case <-f.ctx.Done():
				return
			case <-t.C:
				fn()
			}
		}
	}()
}

// instrumentConfig holds per-instrument construction settings resolved
// against the factory defaults.
type instrumentConfig struct {
	units          Units
	description    string
	window         time.Duration
	bufferInterval time.Duration
}

// Option configures a single instrument construction.
type Option func(*instrumentConfig)

// WithUnits sets the units the registry should attach to all of the
// instrument's keys. Default: UnitsNone (timers default to
// UnitsMilliseconds, traffic lights to UnitsTrafficLight).
func WithUnits(u Units) Option {
	return func(c *instrumentConfig) { c.units = u }
}

// WithDescription sets a human-readable description shared by all of the
// instrument's keys.
func WithDescription(desc string) Option {
	return func(c *instrumentConfig) { c.description = desc }
}

// WithWindow overrides the factory's default window for this instrument.
func WithWindow(d time.Duration) Option {
	return func(c *instrumentConfig) { c.window = d }
}

// WithBufferInterval overrides the factory's default rate-limiting
// interval for this instrument.
func WithBufferInterval(d time.Duration) Option {
	return func(c *instrumentConfig) { c.bufferInterval = d }
}

// resolveOptions applies opts over the factory defaults and validates
// the result.
func (f *Factory) resolveOptions(label string, opts []Option) (instrumentConfig, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return instrumentConfig{}, fmt.Errorf("%w: factory is closed", ErrConfiguration)
	}
	if label == "" {
		return instrumentConfig{}, fmt.Errorf("%w: empty label", ErrConfiguration)
	}
	cfg := instrumentConfig{
		units:          UnitsNone,
		window:         f.window,
		bufferInterval: f.bufferInterval,
	}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.window <= 0 {
		return instrumentConfig{}, fmt.Errorf("%w: non-positive window %v for %q", ErrConfiguration, cfg.window, label)
	}
	if cfg.bufferInterval <= 0 {
		return instrumentConfig{}, fmt.Errorf("%w: non-positive buffer interval %v for %q", ErrConfiguration, cfg.bufferInterval, label)
	}
	return cfg, nil
}

// keyReg is one pending key registration in an all-or-nothing batch.
type keyReg struct {
	name   string
	spec   KeySpec
	source Source
}

// registerKeys registers a batch of keys atomically: if any registration
// fails, the ones already made are rolled back and the failure is
// returned with any rollback errors appended.
func (f *Factory) registerKeys(regs []keyReg) ([]Key, []UpdateFunc, error) {
	keys := make([]Key, 0, len(regs))
	updates := make([]UpdateFunc, 0, len(regs))
	for i, kr := range regs {
		key, update, err := f.reg.Register(kr.name, kr.spec, kr.source)
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := f.reg.Unregister(regs[j].name); uerr != nil {
					err = multierr.Append(err, fmt.Errorf("rollback of %q: %w", regs[j].name, uerr))
				}
			}
			return nil, nil, err
		}
		keys = append(keys, key)
		updates = append(updates, update)
	}
	return keys, updates, nil
}

// unregisterKeys rolls back already-registered keys of a partially
// constructed composite instrument.
func (f *Factory) unregisterKeys(keys []Key) error {
	var err error
	for _, k := range keys {
		if uerr := f.reg.Unregister(k.Name); uerr != nil {
			err = multierr.Append(err, fmt.Errorf("rollback of %q: %w", k.Name, uerr))
		}
	}
	return err
}

// Key naming convention, preserved exactly for downstream compatibility.
func nowKey(label string) string      { return "now/" + label }
func previousKey(label string) string { return "previous/" + label }
func slidingKey(label string) string  { return "sliding/" + label }
