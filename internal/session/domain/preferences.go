package domain

// Accessibility holds the accessibility display preferences.
type Accessibility struct {
	HighContrast  bool   `json:"high_contrast"`
	FontSize      string `json:"font_size"`
	ReducedMotion bool   `json:"reduced_motion"`
}

// Preferences is the small mutable preference bag carried by a session.
type Preferences struct {
	Notifications   bool          `json:"notifications"`
	RealTimeUpdates bool          `json:"real_time_updates"`
	Accessibility   Accessibility `json:"accessibility"`
}

// DefaultPreferences returns the preferences a new session starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications:   true,
		RealTimeUpdates: true,
		Accessibility: Accessibility{
			FontSize: "medium",
		},
	}
}

// AccessibilityPatch is a partial Accessibility; nil fields are left unchanged.
type AccessibilityPatch struct {
	HighContrast  *bool
	FontSize      *string
	ReducedMotion *bool
}

// PreferencesPatch is a partial Preferences; nil fields are left unchanged.
type PreferencesPatch struct {
	Notifications   *bool
	RealTimeUpdates *bool
	Accessibility   *AccessibilityPatch
}

// Merge returns p with every non-nil field of patch applied.
func (p Preferences) Merge(patch PreferencesPatch) Preferences {
	if patch.Notifications != nil {
		p.Notifications = *patch.Notifications
	}
	if patch.RealTimeUpdates != nil {
		p.RealTimeUpdates = *patch.RealTimeUpdates
	}
	if a := patch.Accessibility; a != nil {
		if a.HighContrast != nil {
			p.Accessibility.HighContrast = *a.HighContrast
		}
		if a.FontSize != nil && *a.FontSize != "" {
			p.Accessibility.FontSize = *a.FontSize
		}
		if a.ReducedMotion != nil {
			p.Accessibility.ReducedMotion = *a.ReducedMotion
		}
	}
	return p
}
