package instrument

// ReadKey implements Inspector.ReadKey for BasicRegistry.
// It returns the key metadata and the latest pushed value; when nothing
// has been pushed yet it pulls once from the key's source, so a value is
// observable immediately after registration.
func (r *BasicRegistry) ReadKey(name string) (Key, Value, bool) {
	v, ok := r.keys.Load(name)
	if !ok {
		// not registered
		return Key{}, nil, false
	}

	rk, ok2 := v.(*registeredKey)
	if !ok2 {
		// invariant violation: wrong type in map
		r.reportInvariantViolation("key_type", name)
		return Key{}, nil, false
	}

	rk.mu.Lock()
	latest := rk.latest
	rk.mu.Unlock()

	if latest == nil && rk.source != nil {
		latest = rk.source()
	}
	return rk.key, latest, true
}

// ListKeys returns a best-effort snapshot of registered keys and their
// latest values. It does not acquire per-name init mutexes for each
// entry; callers should treat the result as a point-in-time snapshot
// that may race with concurrent registrations.
func (r *BasicRegistry) ListKeys() []KeyEntry {
	out := make([]KeyEntry, 0)
	r.keys.Range(func(_, v interface{}) bool {
		rk, ok := v.(*registeredKey)
		if !ok {
			return true // skip invalid entries
		}
		rk.mu.Lock()
		latest := rk.latest
		rk.mu.Unlock()
		out = append(out, KeyEntry{Key: rk.key, Value: latest})
		return true
	})
	return out
}
