package instrument

type basicRegistryConfig struct {
	// when true, keep per-key mutex entries in `inits` after registration
	// instead of removing them to allow GC of mutexes for many ephemeral
	// key names. Default: false (cleanup enabled).
	doNotCleanupInits bool
	logger            logger
}

// BasicRegistryOption configures a BasicRegistry constructed by NewBasicRegistry.
type BasicRegistryOption func(*basicRegistryConfig)

// WithInitCleanupDisabled controls whether per-key init mutex entries are
// removed from the registry's internal `inits` map after registration.
// When enabled the entries are deleted to allow GC of mutexes for
// ephemeral key names. Init cleanup is enabled by default; this option
// disables it.
func WithInitCleanupDisabled() BasicRegistryOption {
	return func(cfg *basicRegistryConfig) { cfg.doNotCleanupInits = true }
}

func WithBasicRegistryLogger(l logger) BasicRegistryOption {
	return func(cfg *basicRegistryConfig) { cfg.logger = l }
}
