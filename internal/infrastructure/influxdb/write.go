package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// DeviceState is the point payload for a device state measurement.
// It mirrors the state fields the hub tracks per device; Position is
// nil for devices that are not covers.
type DeviceState struct {
	On         bool
	Brightness int
	ColorTemp  int
	Position   *int
}

// WriteDeviceState records a device state change.
//
// This is the primary method for recording state history. The write is
// non-blocking; data is batched and sent asynchronously. Calls on a
// disconnected client are silently dropped.
//
// Parameters:
//   - deviceID: The ICS-2000 entity ID
//   - name: Human-readable device name (tag, low cardinality)
//   - deviceType: Device type string (e.g., "dimmer", "switch")
//   - state: The state snapshot to record
func (c *Client) WriteDeviceState(deviceID int, name, deviceType string, state DeviceState) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"on":         state.On,
		"brightness": state.Brightness,
		"color_temp": state.ColorTemp,
	}
	if state.Position != nil {
		fields["position"] = *state.Position
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": strconv.Itoa(deviceID),
			"name":      name,
			"type":      deviceType,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSceneActivation records a scene run.
func (c *Client) WriteSceneActivation(sceneID int, name string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scene_activation",
		map[string]string{
			"scene_id": strconv.Itoa(sceneID),
			"name":     name,
		},
		map[string]interface{}{
			"activated": true,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteRefresh records the outcome of a cloud sync refresh.
//
// Parameters:
//   - devices: Number of devices in the cache after the refresh
//   - scenes: Number of scenes in the cache after the refresh
//   - duration: Wall-clock time the refresh took
func (c *Client) WriteRefresh(devices, scenes int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"refresh",
		nil,
		map[string]interface{}{
			"devices":     devices,
			"scenes":      scenes,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
