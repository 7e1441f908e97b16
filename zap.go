package instrument

import "go.uber.org/zap"

// NewZapLogger adapts a *zap.Logger for use with WithFactoryLogger and
// WithBasicRegistryLogger. The sugared form already provides the
// Debugf/Infof/Warnf/Errorf surface the library logs through.
func NewZapLogger(l *zap.Logger) logger {
	if l == nil {
		return newNoopLogger()
	}
	return l.Sugar()
}
