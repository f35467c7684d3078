package models

// AccessibilityPrefs holds a device's accessibility settings, mirrored from
// the site header toggles so they follow the visitor across sessions.
type AccessibilityPrefs struct {
	HighContrast bool `json:"highContrast"`
	DyslexicFont bool `json:"dyslexicFont"`
	ScreenReader bool `json:"screenReader"`
	FontScale    int  `json:"fontScale"` // percent, 100 = default
}

// DefaultAccessibilityPrefs returns the settings for a device that has never
// toggled anything.
func DefaultAccessibilityPrefs() AccessibilityPrefs {
	return AccessibilityPrefs{FontScale: 100}
}
