package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device id is not in the cache.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrSceneNotFound is returned when a scene id is not in the cache.
	ErrSceneNotFound = errors.New("device: scene not found")

	// ErrInvalidBlacklist is returned when the blacklist option contains
	// entries that are not integers.
	ErrInvalidBlacklist = errors.New("device: invalid blacklist")
)
