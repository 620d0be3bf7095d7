// Package mqtt provides optional MQTT state publishing for the ICS-2000
// core daemon.
//
// When enabled, the hub publishes retained JSON state messages after every
// refresh and after every command, so Home Assistant (or any other MQTT
// consumer) can mirror device state without polling the REST API:
//
//	kaku/{gateway_mac}/{device_id}/state
//
// The package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{Base: cfg.MQTT.Topic}.DeviceState(mac, 42)
//	client.PublishRetained(topic, payload)
//
// # Security Considerations
//
//   - TLS is recommended for brokers outside the local network
//   - Anonymous access is only for local development
//   - State payloads carry device names; treat the broker as trusted
package mqtt
