package instrument

import (
	"fmt"
	"sync"
)

// BasicRegistry is a simple in-memory implementation of Registry.
// It is concurrency-safe and suitable for tests, examples, and lightweight apps.
// Keys are registered once by name; re-registering a name fails with
// ErrNamingCollision (same kind/units) or ErrTypeMismatch (different).
// The latest pushed value is retained per key and exposed via Inspector.
type BasicRegistry struct {
	cfg    *basicRegistryConfig
	logger logger

	keys sync.Map // map[string]*registeredKey
	// per-key init mutexes: protect concurrent registration for the same name
	inits sync.Map // map[string]*sync.Mutex
}

// registeredKey holds a key's immutable metadata, its read-back source,
// and the latest pushed value.
type registeredKey struct {
	key    Key
	source Source

	mu     sync.Mutex
	latest Value
}

// NewBasicRegistry constructs a new BasicRegistry.
// Accepts optional functional options to customize behavior.
func NewBasicRegistry(opts ...BasicRegistryOption) *BasicRegistry {
	cfg := &basicRegistryConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	l := cfg.logger
	if l == nil {
		l = newNoopLogger()
	}
	return &BasicRegistry{cfg: cfg, logger: l}
}

// keyMu returns a per-name mutex, creating one if necessary.
// The returned mutex is owned by the registry and should be locked/unlocked by callers.
func (r *BasicRegistry) keyMu(name string) *sync.Mutex {
	m, _ := r.inits.LoadOrStore(name, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Register implements Registry. The returned UpdateFunc is safe for
// concurrent use; it retains the most recent value for inspection.
func (r *BasicRegistry) Register(name string, spec KeySpec, source Source) (Key, UpdateFunc, error) {
	if name == "" {
		return Key{}, nil, fmt.Errorf("%w: empty key name", ErrConfiguration)
	}

	km := r.keyMu(name)
	km.Lock()
	defer km.Unlock()

	if v, ok := r.keys.Load(name); ok {
		existing, ok2 := v.(*registeredKey)
		if !ok2 {
			// invariant violation: wrong type in map
			r.reportInvariantViolation("key_type", name)
			return Key{}, nil, fmt.Errorf("%w: %q", ErrNamingCollision, name)
		}
		if existing.key.Kind != spec.Kind || existing.key.Units != spec.Units {
			return Key{}, nil, fmt.Errorf("%w: %q registered as (%s, %s), requested (%s, %s)",
				ErrTypeMismatch, name, existing.key.Kind, existing.key.Units, spec.Kind, spec.Units)
		}
		return Key{}, nil, fmt.Errorf("%w: %q", ErrNamingCollision, name)
	}

	rk := &registeredKey{
		key: Key{
			Name:        name,
			Kind:        spec.Kind,
			Units:       spec.Units,
			Description: spec.Description,
		},
		source: source,
	}
	r.keys.Store(name, rk)

	// optional cleanup: remove the per-name mutex from the inits map to allow GC of mutexes.
	// It's safe to delete while holding the mutex; existing goroutines that already
	// hold the pointer will continue to use it, and new callers will get a new mutex.
	if !r.cfg.doNotCleanupInits {
		r.inits.Delete(name)
	}

	update := func(v Value) {
		rk.mu.Lock()
		rk.latest = v
		rk.mu.Unlock()
	}
	return rk.key, update, nil
}

// Unregister removes a key by name. It exists for construction-time
// rollback; update functions handed out earlier become writes to a
// detached slot and are harmless.
func (r *BasicRegistry) Unregister(name string) error {
	km := r.keyMu(name)
	km.Lock()
	defer km.Unlock()

	if _, ok := r.keys.Load(name); !ok {
		return fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	r.keys.Delete(name)
	return nil
}

// reportInvariantViolation reports unexpected internal states such as
// "wrong type stored under a key name". In debug builds (or under the
// race detector) it panics to catch bugs early; in release builds it
// logs a warning.
func (r *BasicRegistry) reportInvariantViolation(kind, name string) {
	msg := "[instrument] invariant violation: " + kind + " for " + name

	// In debug builds, fail fast.
	if isDebugBuild() {
		panic(msg)
	}

	// In release builds, just log a warning.
	r.logger.Warnf(msg)
}

// isDebugBuild reports whether we're in a "debug" or "race" build.
// This uses Go's built-in race detector flag or a debug build tag.
func isDebugBuild() bool {
	return raceBuild || debugBuild
}
