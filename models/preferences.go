package models

// Preferences is pure per-user configuration ("preferences" key).
type Preferences struct {
	DarkMode      bool `json:"darkMode"`
	Notifications bool `json:"notifications"`
	Sound         bool `json:"sound"`
}

// DefaultPreferences matches a fresh account.
func DefaultPreferences() Preferences {
	return Preferences{DarkMode: true, Notifications: true, Sound: true}
}
