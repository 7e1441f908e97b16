package instrument

// Inspector provides an optional capability of key inspection/snapshot.
// ReadKey returns the key metadata together with its latest value (or a
// pull from its source when nothing has been pushed yet) and a flag of
// whether the key exists.
// Snapshot semantics: best-effort at call time.
// Methods must be safe for concurrent use.
type Inspector interface {
	ReadKey(name string) (Key, Value, bool)

	// ListKeys returns enumeration for admin/debug UIs.
	ListKeys() []KeyEntry
}

type KeyEntry struct {
	Key   Key
	Value Value // latest published value; may be nil if never updated
}
