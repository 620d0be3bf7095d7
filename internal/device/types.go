package device

import (
	"fmt"
	"time"
)

// Type classifies a device. The sync response does not carry a type field,
// so these are derived from the device name and module value.
type Type string

// Type constants.
const (
	TypeSwitch         Type = "switch"
	TypeDimmer         Type = "dimmer"
	TypeLight          Type = "light"
	TypeColorTempLight Type = "color_temp_light"
	TypeCover          Type = "cover"
	TypeSensor         Type = "sensor"
	TypeGroup          Type = "group"
)

// AllTypes returns all valid device type values.
func AllTypes() []Type {
	return []Type{
		TypeSwitch, TypeDimmer, TypeLight, TypeColorTempLight,
		TypeCover, TypeSensor, TypeGroup,
	}
}

// Colour temperature bounds as reported by the gateway.
const (
	ColorTempMin = 0
	ColorTempMax = 600
)

// Device represents one module from a cloud sync.
//
// Devices are value-replaced wholesale on each refresh; the hub never
// merges fields from two syncs.
type Device struct {
	// Identity
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Classification
	Type     Type `json:"type"`
	Dimmable bool `json:"dimmable"`

	// Current state
	On         bool   `json:"on"`
	Brightness int    `json:"brightness"`
	ColorTemp  int    `json:"color_temp"`
	Position   *int   `json:"position,omitempty"`

	// Raw sync fields, kept for diagnostics
	ModuleValue   int    `json:"module_value"`
	VersionStatus string `json:"version_status"`

	// StateUpdatedAt is when the state fields last changed.
	StateUpdatedAt time.Time `json:"state_updated_at"`
}

// Copy returns an independent copy of the Device.
// The Position pointer is cloned so cache entries cannot be mutated
// through returned values.
func (d *Device) Copy() *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	if d.Position != nil {
		pos := *d.Position
		cpy.Position = &pos
	}
	return &cpy
}

// State returns the persistable slice of the device's state.
func (d *Device) State() State {
	st := State{
		On:         d.On,
		Brightness: d.Brightness,
		ColorTemp:  d.ColorTemp,
	}
	if d.Position != nil {
		pos := *d.Position
		st.Position = &pos
	}
	return st
}

// ApplyState copies persisted state fields onto the device.
func (d *Device) ApplyState(st State) {
	d.On = st.On
	d.Brightness = st.Brightness
	d.ColorTemp = st.ColorTemp
	if st.Position != nil {
		pos := *st.Position
		d.Position = &pos
	} else {
		d.Position = nil
	}
}

// State is the persistable slice of a device's state. It round-trips
// through the device_states table as JSON.
type State struct {
	On         bool `json:"on"`
	Brightness int  `json:"brightness"`
	ColorTemp  int  `json:"color_temp"`
	Position   *int `json:"position,omitempty"`
}

// Scene is a cloud-stored preset. Scenes are triggered, not stateful.
type Scene struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FromSync builds a Device from the fields of one sync module.
//
// The name drives type and dimmability guessing; an empty name gets the
// "Device <id>" fallback the vendor app uses. The on/off state derives
// from the module's version_status counter — odd values mean on.
//
// Parameters:
//   - id: Module id
//   - name: Decrypted device name (may be empty)
//   - moduleValue: The module's numeric device value
//   - versionStatus: The module's version_status counter as a string
//
// Returns:
//   - Device: Mapped device with guessed classification
func FromSync(id int, name string, moduleValue int, versionStatus string) Device {
	if name == "" {
		name = fmt.Sprintf("Device %d", id)
	}

	typ := GuessType(name, moduleValue)
	dimmable := GuessDimmable(name, typ)

	d := Device{
		ID:             id,
		Name:           name,
		Type:           typ,
		Dimmable:       dimmable,
		ModuleValue:    moduleValue,
		VersionStatus:  versionStatus,
		StateUpdatedAt: time.Now().UTC(),
	}

	// Odd version_status counters indicate the device is on. A zero or
	// unparsable counter leaves the device off.
	if n, ok := parseVersionStatus(versionStatus); ok && n%2 == 1 {
		d.On = true
	}

	if dimmable {
		d.Brightness = defaultBrightness
	}

	return d
}

// defaultBrightness is the brightness assumed for a dimmable device before
// the first real state is known.
const defaultBrightness = 50

// parseVersionStatus parses the version_status counter.
// Returns ok=false for empty or non-numeric values.
func parseVersionStatus(s string) (int, bool) {
	if s == "" || s == "0" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// ClampColorTemp clamps a colour temperature into the gateway's range.
func ClampColorTemp(v int) int {
	if v < ColorTempMin {
		return ColorTempMin
	}
	if v > ColorTempMax {
		return ColorTempMax
	}
	return v
}
