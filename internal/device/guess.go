package device

import "strings"

// Keyword tables for type guessing. Dutch and English terms both appear in
// real installs; the lists mirror the vendor app's heuristic.
var (
	sensorKeywords = []string{"motion", "sensor", "detector", "pir", "bewegings", "melder"}
	dimmerKeywords = []string{"dimmer", "dim", "brightness"}
	lightKeywords  = []string{"lamp", "light", "bulb", "led", "spot"}
	coverKeywords  = []string{"blind", "shutter", "curtain", "cover", "screen", "gordijn", "rolluik", "zonwering"}
	switchKeywords = []string{"plug", "socket", "outlet", "switch", "stekker", "stopcontact"}

	colorTempKeywords = []string{"white ambiance", "ambiance", "tunable", "cct"}
	groupKeywords     = []string{"group", "groep"}
)

// Module device values that consistently map to a type across firmware
// versions. Used as a fallback when the name decides nothing.
var (
	switchValues = map[int]bool{1: true, 3: true, 5: true}
	dimmerValues = map[int]bool{2: true, 4: true}
)

// GuessType derives a device type from its name and module value.
//
// The name is checked against keyword tables in priority order (a "dimmer
// plug" is a dimmer, not a switch). When the name decides nothing, the
// module value picks between switch and dimmer, and anything left over is
// a switch — the safest default.
func GuessType(name string, moduleValue int) Type {
	lower := strings.ToLower(name)

	switch {
	case containsAny(lower, groupKeywords):
		return TypeGroup
	case containsAny(lower, sensorKeywords):
		return TypeSensor
	case containsAny(lower, dimmerKeywords):
		return TypeDimmer
	case containsAny(lower, colorTempKeywords):
		return TypeColorTempLight
	case containsAny(lower, lightKeywords):
		return TypeLight
	case containsAny(lower, coverKeywords):
		return TypeCover
	case containsAny(lower, switchKeywords):
		return TypeSwitch
	}

	if switchValues[moduleValue] {
		return TypeSwitch
	}
	if dimmerValues[moduleValue] {
		return TypeDimmer
	}

	return TypeSwitch
}

// GuessDimmable reports whether a device supports brightness control.
// Dimmers and covers always do; otherwise the name has to say so.
func GuessDimmable(name string, typ Type) bool {
	if typ == TypeDimmer || typ == TypeCover || typ == TypeColorTempLight {
		return true
	}
	lower := strings.ToLower(name)
	return containsAny(lower, []string{"dimmer", "dim", "brightness", "dimmable", "dimbaar"})
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
