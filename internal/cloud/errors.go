package cloud

import "errors"

// Domain errors for the cloud package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, cloud.ErrAuth) {
//	    // surface as a credentials problem, keep the previous cache
//	}
var (
	// ErrAuth is returned when login fails: bad credentials, a non-2xx
	// response, or a malformed login payload.
	ErrAuth = errors.New("cloud: authentication failed")

	// ErrSync is returned on network or parse failure during device sync.
	ErrSync = errors.New("cloud: device sync failed")

	// ErrCommand is returned when a device command is not accepted after
	// all configured attempts.
	ErrCommand = errors.New("cloud: command failed")

	// ErrDecrypt is returned when a module blob cannot be decrypted or
	// does not contain JSON.
	ErrDecrypt = errors.New("cloud: decrypt failed")

	// ErrNoKey is returned when decryption is attempted without an AES key.
	ErrNoKey = errors.New("cloud: no AES key available")
)
