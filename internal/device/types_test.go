package device

import "testing"

func TestFromSync(t *testing.T) {
	tests := []struct {
		name          string
		deviceName    string
		moduleValue   int
		versionStatus string
		wantType      Type
		wantDimmable  bool
		wantOn        bool
	}{
		{
			name:          "dimmer from name, odd status is on",
			deviceName:    "Woonkamer Dimmer",
			versionStatus: "3",
			wantType:      TypeDimmer,
			wantDimmable:  true,
			wantOn:        true,
		},
		{
			name:          "light from name, even status is off",
			deviceName:    "Keuken Lamp",
			versionStatus: "4",
			wantType:      TypeLight,
			wantOn:        false,
		},
		{
			name:          "zero status is off",
			deviceName:    "Schakelaar Switch",
			versionStatus: "0",
			wantType:      TypeSwitch,
			wantOn:        false,
		},
		{
			name:          "garbage status is off",
			deviceName:    "Tuin Plug",
			versionStatus: "v1.2",
			wantType:      TypeSwitch,
			wantOn:        false,
		},
		{
			name:         "module value fallback to dimmer",
			deviceName:   "Onbekend",
			moduleValue:  2,
			wantType:     TypeDimmer,
			wantDimmable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromSync(42, tt.deviceName, tt.moduleValue, tt.versionStatus)

			if d.ID != 42 {
				t.Errorf("ID = %d, want 42", d.ID)
			}
			if d.Name != tt.deviceName {
				t.Errorf("Name = %q, want %q", d.Name, tt.deviceName)
			}
			if d.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", d.Type, tt.wantType)
			}
			if d.Dimmable != tt.wantDimmable {
				t.Errorf("Dimmable = %v, want %v", d.Dimmable, tt.wantDimmable)
			}
			if d.On != tt.wantOn {
				t.Errorf("On = %v, want %v", d.On, tt.wantOn)
			}
		})
	}
}

func TestFromSync_NameFallback(t *testing.T) {
	d := FromSync(7, "", 0, "")
	if d.Name != "Device 7" {
		t.Errorf("Name = %q, want %q", d.Name, "Device 7")
	}
}

func TestFromSync_DimmableGetsDefaultBrightness(t *testing.T) {
	d := FromSync(1, "Eettafel Dimmer", 0, "")
	if d.Brightness != defaultBrightness {
		t.Errorf("Brightness = %d, want %d", d.Brightness, defaultBrightness)
	}

	d = FromSync(2, "Gang Switch", 0, "")
	if d.Brightness != 0 {
		t.Errorf("Brightness for switch = %d, want 0", d.Brightness)
	}
}

func TestDevice_Copy(t *testing.T) {
	pos := 40
	orig := &Device{ID: 1, Name: "Rolluik", Type: TypeCover, Position: &pos}

	cpy := orig.Copy()
	*cpy.Position = 80
	cpy.Name = "changed"

	if *orig.Position != 40 {
		t.Errorf("original Position mutated to %d via copy", *orig.Position)
	}
	if orig.Name != "Rolluik" {
		t.Errorf("original Name mutated to %q via copy", orig.Name)
	}
}

func TestDevice_Copy_Nil(t *testing.T) {
	var d *Device
	if d.Copy() != nil {
		t.Error("Copy() of nil device should be nil")
	}
}

func TestDevice_StateRoundTrip(t *testing.T) {
	pos := 25
	d := &Device{On: true, Brightness: 70, ColorTemp: 345, Position: &pos}

	st := d.State()

	var restored Device
	restored.ApplyState(st)

	if !restored.On || restored.Brightness != 70 || restored.ColorTemp != 345 {
		t.Errorf("restored state = %+v, want on/70/345", restored)
	}
	if restored.Position == nil || *restored.Position != 25 {
		t.Errorf("restored Position = %v, want 25", restored.Position)
	}

	// The state snapshot must be independent of the source device.
	*d.Position = 99
	if *restored.Position != 25 {
		t.Error("state snapshot shares Position pointer with device")
	}
}

func TestClampColorTemp(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-10, 0},
		{0, 0},
		{300, 300},
		{600, 600},
		{9999, 600},
	}
	for _, tt := range tests {
		if got := ClampColorTemp(tt.in); got != tt.want {
			t.Errorf("ClampColorTemp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
