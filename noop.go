package instrument

// NewNoopRegistry returns a Registry that accepts every registration and
// discards every update. It disables instrumentation without touching
// call sites.
func NewNoopRegistry() Registry {
	return noopRegistry{}
}

type noopRegistry struct{}

func (noopRegistry) Register(name string, spec KeySpec, _ Source) (Key, UpdateFunc, error) {
	k := Key{Name: name, Kind: spec.Kind, Units: spec.Units, Description: spec.Description}
	return k, func(Value) {}, nil
}

func (noopRegistry) Unregister(string) error { return nil }
