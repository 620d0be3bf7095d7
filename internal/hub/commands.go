package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/kakuware/ics2000-core/internal/cloud"
	"github.com/kakuware/ics2000-core/internal/device"
)

// Brightness is expressed as a 0-100 percentage, matching the vendor app.
const (
	brightnessMin = 0
	brightnessMax = 100
)

// RunScene triggers a cloud-stored scene by id.
//
// The lookup is cache-only: an unknown id fails with
// device.ErrSceneNotFound before any network call is made.
func (h *Hub) RunScene(ctx context.Context, id int) error {
	h.mu.RLock()
	scene, ok := h.scenes[id]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: scene %d", device.ErrSceneNotFound, id)
	}

	if err := h.client.Command(ctx, id, cloud.CommandOn, 1); err != nil {
		return fmt.Errorf("running scene %d: %w", id, err)
	}

	h.logger.Info("scene activated", "scene_id", id, "name", scene.Name)

	if h.influx != nil {
		h.influx.WriteSceneActivation(id, scene.Name)
	}
	if h.mqtt != nil {
		topic := h.mqtt.TopicBuilder().SceneActivated(h.gatewayMAC(), id)
		payload := fmt.Sprintf(`{"name":%q,"activated_at":%q}`,
			scene.Name, time.Now().UTC().Format(time.RFC3339))
		if err := h.mqtt.Publish(topic, []byte(payload), 0, false); err != nil {
			h.logger.Warn("publishing scene activation failed", "scene_id", id, "error", err)
		}
	}
	return nil
}

// Identify asks a device to identify itself (flash, beep, whatever the
// hardware supports).
//
// Returns device.ErrDeviceNotFound for ids not in the cache.
func (h *Hub) Identify(ctx context.Context, id int) error {
	if _, err := h.Device(id); err != nil {
		return err
	}

	if err := h.client.Command(ctx, id, cloud.CommandIdentify, 1); err != nil {
		return fmt.Errorf("identifying device %d: %w", id, err)
	}
	h.logger.Info("identify sent", "device_id", id)
	return nil
}

// TurnOn switches a device on.
func (h *Hub) TurnOn(ctx context.Context, id int) error {
	return h.switchDevice(ctx, id, true)
}

// TurnOff switches a device off.
func (h *Hub) TurnOff(ctx context.Context, id int) error {
	return h.switchDevice(ctx, id, false)
}

func (h *Hub) switchDevice(ctx context.Context, id int, on bool) error {
	if _, err := h.Device(id); err != nil {
		return err
	}

	function, value := cloud.CommandOff, 0
	if on {
		function, value = cloud.CommandOn, 1
	}
	if err := h.client.Command(ctx, id, function, value); err != nil {
		return fmt.Errorf("switching device %d: %w", id, err)
	}

	h.updateDeviceState(ctx, id, func(d *device.Device) {
		d.On = on
	})
	return nil
}

// SetBrightness dims a device to the given 0-100 level.
//
// Level 0 turns the device off; any other level implies on, matching
// the gateway's dim behaviour.
func (h *Hub) SetBrightness(ctx context.Context, id, level int) error {
	if level < brightnessMin || level > brightnessMax {
		return fmt.Errorf("brightness %d out of range [%d, %d]", level, brightnessMin, brightnessMax)
	}

	d, err := h.Device(id)
	if err != nil {
		return err
	}
	if !d.Dimmable {
		return fmt.Errorf("device %d (%s) is not dimmable", id, d.Name)
	}

	if err := h.client.Command(ctx, id, cloud.CommandDim, level); err != nil {
		return fmt.Errorf("dimming device %d: %w", id, err)
	}

	h.updateDeviceState(ctx, id, func(d *device.Device) {
		d.Brightness = level
		d.On = level > 0
	})
	return nil
}

// SetColorTemp sets a device's colour temperature. The value is clamped
// to the gateway's 0-600 range.
func (h *Hub) SetColorTemp(ctx context.Context, id, value int) error {
	d, err := h.Device(id)
	if err != nil {
		return err
	}
	if d.Type != device.TypeColorTempLight {
		return fmt.Errorf("device %d (%s) has no colour temperature control", id, d.Name)
	}

	value = device.ClampColorTemp(value)
	if err := h.client.Command(ctx, id, cloud.CommandColorTemp, value); err != nil {
		return fmt.Errorf("setting colour temperature on device %d: %w", id, err)
	}

	h.updateDeviceState(ctx, id, func(d *device.Device) {
		d.ColorTemp = value
	})
	return nil
}

// updateDeviceState applies an optimistic state mutation to a cached
// device after a command was accepted, then runs the write-through side
// effects (state store, MQTT, history). Best effort: side-effect
// failures are logged, never returned.
func (h *Hub) updateDeviceState(ctx context.Context, id int, mutate func(d *device.Device)) {
	h.mu.Lock()
	d, ok := h.devices[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	mutate(&d)
	d.StateUpdatedAt = time.Now()
	h.devices[id] = d
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Save(ctx, id, d.State()); err != nil {
			h.logger.Warn("persisting device state failed", "device_id", id, "error", err)
		}
	}
	h.publishState(h.gatewayMAC(), d)
	h.recordState(d)
}
