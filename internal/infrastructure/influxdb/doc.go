// Package influxdb provides optional state history for the ICS-2000 daemon.
//
// It wraps the official influxdb-client-go v2 library with daemon-specific
// patterns for connection management, state recording, and health monitoring.
//
// # Purpose
//
// This package records time-series history for:
//   - Device state changes (on/off, brightness, colour temperature, position)
//   - Scene activations
//   - Cloud refresh outcomes (device counts, duration)
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceState(42, "Woonkamer Lamp", "dimmer", device.State{On: true, Brightness: 80})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
// History recording is best-effort: a failed write never blocks or fails
// a device command.
package influxdb
