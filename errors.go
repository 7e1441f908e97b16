package instrument

import (
	"errors"
	"fmt"
)

// Construction-time errors. All instrument constructors fail fast and
// synchronously; a failed construction leaves no keys registered.
// Runtime update calls never return these.
var (
	// ErrNamingCollision is returned when a derived key name is already
	// registered with identical type and units.
	ErrNamingCollision = errors.New("instrument: key already registered")

	// ErrTypeMismatch is returned when a key name is already registered
	// with a different value kind or units.
	ErrTypeMismatch = errors.New("instrument: key type/units mismatch")

	// ErrConfiguration is returned for invalid construction parameters,
	// such as a non-positive window or buffer interval.
	ErrConfiguration = errors.New("instrument: invalid configuration")

	// ErrNotRegistered is returned by Unregister for an unknown key name.
	ErrNotRegistered = errors.New("instrument: key not registered")
)

func errNilEncoder(label string) error {
	return fmt.Errorf("%w: nil encoder for %q", ErrConfiguration, label)
}
