// Package device holds the data model for ICS-2000 devices and scenes.
//
// # Key Types
//
//   - Device: a controllable or monitorable entity from a cloud sync
//   - Scene: a cloud-stored preset triggerable by id
//   - Type: device classification (switch, dimmer, light, cover, ...)
//   - State: the persistable slice of a device's state
//   - Blacklist: ids excluded from the cache at sync time
//   - StateStore: SQLite persistence for last-known device state
//
// The cloud sync response does not carry an explicit device type; the type
// and dimmability are guessed from the decrypted device name and the
// module's device value, the same heuristic the vendor app uses. Devices a
// guess cannot place default to switch — a wrong guess there degrades to a
// working on/off entity.
//
// Devices are replaced wholesale on each sync; there is no partial merge.
// A device missing from the latest sync is stale but kept until the hub is
// restarted, mirroring the observed cloud contract.
package device
