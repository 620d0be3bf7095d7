// Package hub owns the authenticated cloud session and the device/scene
// cache for one ICS-2000 gateway.
//
// The hub is the single writer of the cache: a refresh logs in when
// needed, syncs the module list from the cloud, decrypts and maps each
// module, applies the entity blacklist, and then swaps both cache maps
// under one write lock. Readers (the REST API, service dispatch) only
// ever see a fully consistent cache.
//
// # Refresh Semantics
//
// A refresh fully replaces the cache: after a successful refresh the
// cache contains exactly the devices of the latest sync minus
// blacklisted ids. Known brightness/colour state is carried over for
// devices that were already cached, and restored from the state store
// for devices reappearing after a restart. A failed refresh leaves the
// previous cache untouched.
//
// # Scheduling
//
// Start arms a goroutine that runs a refresh at every local midnight in
// the configured timezone, mirroring the vendor app's nightly re-sync.
// Scheduled failures are logged and swallowed; manual refreshes keep
// working regardless.
//
// # Lifecycle
//
//	hub, err := hub.New(cfg, cloudClient, hub.Options{Store: store})
//	if err != nil { ... }
//	if err := hub.Start(ctx); err != nil { ... }
//	defer hub.Close()
package hub
