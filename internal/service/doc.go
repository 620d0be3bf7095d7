// Package service maps named service actions onto hub operations.
//
// The supported actions match the vendor integration's service
// surface:
//
//	reload          — drop the session, re-login and refresh
//	run_scene       — activate a scene (args: scene_id)
//	identify        — flash a device (args: device_id)
//	refresh_devices — refresh the device cache
//	reset_state     — wipe persisted device state
//
// The dispatcher validates arguments and returns success or failure
// only; it has no cache side effects beyond the hub call itself.
package service
