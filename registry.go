package instrument

// Units is an advisory measurement unit attached to a key. It is opaque
// to this library and consumed by the registry for formatting/export.
type Units string

const (
	UnitsNone         Units = "none"
	UnitsCount        Units = "count"
	UnitsSeconds      Units = "seconds"
	UnitsMinutes      Units = "minutes"
	UnitsMilliseconds Units = "milliseconds"
	UnitsTrafficLight Units = "trafficlight"
)

func (u Units) String() string { return string(u) }

// KeySpec describes a key being registered: the wire kind of its values,
// its units, and a human-readable description.
type KeySpec struct {
	Kind        ValueKind
	Units       Units
	Description string
}

// Key is the stable, immutable identity under which a derived value is
// published. Once registered, a key's kind, units and description never
// change for the lifetime of its instrument.
type Key struct {
	Name        string
	Kind        ValueKind
	Units       Units
	Description string
}

func (k Key) String() string { return k.Name }

// UpdateFunc pushes a new value for a registered key. Implementations
// must be safe to invoke concurrently from multiple callers and must not
// block; a registry that exports asynchronously buffers internally.
type UpdateFunc func(Value)

// Source exposes the current value behind a key so pull-based registries
// can read on demand instead of relying solely on pushed updates.
// Implementations must be safe for concurrent use.
type Source func() Value

// Registry owns keys and routes instrument updates to consumers or
// exporters. Implementations must be safe for concurrent use.
//
// Register fails with ErrNamingCollision when the name is already taken
// with an identical spec, and with ErrTypeMismatch when the existing
// registration has a different kind or units. Unregister exists so the
// instrument facade can roll back partially registered instruments;
// steady-state code never calls it.
type Registry interface {
	Register(name string, spec KeySpec, source Source) (Key, UpdateFunc, error)
	Unregister(name string) error
}
