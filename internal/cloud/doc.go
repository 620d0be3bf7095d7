// Package cloud implements the HTTP client for the KlikAanKlikUit ICS-2000
// cloud service (trustsmartcloud2.com).
//
// The client speaks the same form-encoded dialect as the Homebridge plugin:
//
//   - account.php  — login; returns the home id, gateway MAC and AES key
//   - gateway.php  — device sync and device commands
//
// Device modules in a sync response carry their metadata (names, entities)
// as base64 AES-128-CBC blobs encrypted with the account key; crypto.go
// handles decryption and name extraction.
//
// The client is stateless beyond its configuration: it performs no local
// persistence and holds no device cache. Sessions, caching and scheduling
// belong to the hub.
//
// # Errors
//
//   - ErrAuth:    bad credentials or a malformed login response
//   - ErrSync:    network or parse failure during device sync
//   - ErrCommand: a device command was not accepted after all attempts
//
// An empty sync response is not an error; it yields an empty module list.
package cloud
