package domain

import (
	"strconv"
)

// PrefKey names one persisted preference.
type PrefKey string

// Persisted preference keys.
const (
	PrefBackgroundIndex PrefKey = "background_index"
	PrefLastMode        PrefKey = "last_mode"
	PrefCustomBgURI     PrefKey = "custom_bg_uri"
	PrefPowerSaveMode   PrefKey = "power_save_mode"
)

// PrefKeys lists every key in load order.
var PrefKeys = []PrefKey{
	PrefBackgroundIndex,
	PrefLastMode,
	PrefCustomBgURI,
	PrefPowerSaveMode,
}

// Preferences is the decoded form of the four persisted keys.
type Preferences struct {
	BackgroundIndex int
	LastMode        Mode
	CustomBgURI     string
	PowerSaveMode   bool
}

// DefaultPreferences returns the values used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		BackgroundIndex: 0,
		LastMode:        ModePomodoro,
		PowerSaveMode:   false,
	}
}

// DecodePreferences builds Preferences from raw stored strings. Missing,
// malformed or out-of-range values are replaced by their defaults.
func DecodePreferences(raw map[PrefKey]string) Preferences {
	prefs := DefaultPreferences()

	if v, ok := raw[PrefBackgroundIndex]; ok {
		if idx, err := strconv.Atoi(v); err == nil && idx >= CustomBackgroundIndex && idx < len(Backgrounds) {
			prefs.BackgroundIndex = idx
		}
	}
	if v, ok := raw[PrefLastMode]; ok {
		if ordinal, err := strconv.Atoi(v); err == nil && Mode(ordinal).Valid() {
			prefs.LastMode = Mode(ordinal)
		}
	}
	if v, ok := raw[PrefCustomBgURI]; ok {
		prefs.CustomBgURI = v
	}
	if v, ok := raw[PrefPowerSaveMode]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			prefs.PowerSaveMode = b
		}
	}

	// A custom index is only meaningful with a URI to show.
	if prefs.BackgroundIndex == CustomBackgroundIndex && prefs.CustomBgURI == "" {
		prefs.BackgroundIndex = 0
	}
	return prefs
}

// EncodeInt is the stored form of an integer preference.
func EncodeInt(v int) string { return strconv.Itoa(v) }

// EncodeBool is the stored form of a boolean preference.
func EncodeBool(v bool) string { return strconv.FormatBool(v) }
