// Package api provides the optional local REST server for the ICS-2000
// daemon.
//
// The server is a read-only mirror of the hub's device/scene cache plus
// a service dispatch endpoint, intended for Home Assistant REST sensors
// and local debugging. It is only started when api.enabled is set and
// listens on the configured host/port (default 9100).
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Routes (under /api/v1):
//
//	GET  /health              — daemon status and cache counters
//	GET  /devices             — all cached devices
//	GET  /devices/{id}        — one cached device
//	GET  /scenes              — cached scenes (404 unless show_scenes)
//	GET  /scenes/{id}         — one cached scene
//	POST /services/{action}   — service dispatch (reload, run_scene,
//	                            identify, refresh_devices, reset_state)
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
