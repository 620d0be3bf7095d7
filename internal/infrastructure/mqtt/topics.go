package mqtt

import "fmt"

// DefaultBaseTopic is used when no base topic is configured.
const DefaultBaseTopic = "kaku"

// Topics provides builders for the daemon's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// All device topics use the scheme: {base}/{gateway_mac}/{device_id}/state
//
//	topics := mqtt.Topics{Base: "kaku"}
//	stateTopic := topics.DeviceState("0012a3b4c5d6", 42)
//	// Returns: "kaku/0012a3b4c5d6/42/state"
type Topics struct {
	// Base is the topic prefix. Empty falls back to DefaultBaseTopic.
	Base string
}

// base returns the configured prefix or the default.
func (t Topics) base() string {
	if t.Base == "" {
		return DefaultBaseTopic
	}
	return t.Base
}

// DeviceState returns the retained state topic for a device.
//
// Example: kaku/0012a3b4c5d6/42/state
func (t Topics) DeviceState(gatewayMAC string, deviceID int) string {
	return fmt.Sprintf("%s/%s/%d/state", t.base(), gatewayMAC, deviceID)
}

// SceneActivated returns the event topic for scene activations.
//
// Example: kaku/0012a3b4c5d6/scene/7
func (t Topics) SceneActivated(gatewayMAC string, sceneID int) string {
	return fmt.Sprintf("%s/%s/scene/%d", t.base(), gatewayMAC, sceneID)
}

// BridgeStatus returns the daemon status topic used for online/offline
// messages and the Last Will.
//
// Example: kaku/bridge/status
func (t Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", t.base())
}
