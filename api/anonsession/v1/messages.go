package anonsessionv1

import "time"

// Wire messages of AnonymousSessionService. They travel as google.protobuf.Struct values; field
// names are the JSON tags below.

type Accessibility struct {
	HighContrast  bool   `json:"high_contrast"`
	FontSize      string `json:"font_size"`
	ReducedMotion bool   `json:"reduced_motion"`
}

type Preferences struct {
	Notifications   bool          `json:"notifications"`
	RealTimeUpdates bool          `json:"real_time_updates"`
	Accessibility   Accessibility `json:"accessibility"`
}

// AccessibilityPatch and PreferencesPatch carry only the fields a client wants to change.
type AccessibilityPatch struct {
	HighContrast  *bool   `json:"high_contrast,omitempty"`
	FontSize      *string `json:"font_size,omitempty"`
	ReducedMotion *bool   `json:"reduced_motion,omitempty"`
}

type PreferencesPatch struct {
	Notifications   *bool               `json:"notifications,omitempty"`
	RealTimeUpdates *bool               `json:"real_time_updates,omitempty"`
	Accessibility   *AccessibilityPatch `json:"accessibility,omitempty"`
}

type ActivityCounts struct {
	Posts              int `json:"posts"`
	Replies            int `json:"replies"`
	Likes              int `json:"likes"`
	Reports            int `json:"reports"`
	ComplianceWarnings int `json:"compliance_warnings"`
	EducationalPrompts int `json:"educational_prompts"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	SessionID   string      `json:"session_id"`
	Token       string      `json:"token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Preferences Preferences `json:"preferences"`
}

// ValidateSessionRequest carries the token in the body; when Token is empty the bearer token
// from the authorization metadata is used.
type ValidateSessionRequest struct {
	Token string `json:"token,omitempty"`
}

// SessionInfo is the client view of a session. Suspicion scores and behavior flags are never
// part of it.
type SessionInfo struct {
	SessionID   string         `json:"session_id"`
	CreatedAt   time.Time      `json:"created_at"`
	LastActive  time.Time      `json:"last_active"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Activity    ActivityCounts `json:"activity"`
	Preferences Preferences    `json:"preferences"`
	Verified    bool           `json:"verified"`
}

type UpdateSessionRequest struct {
	Preferences *PreferencesPatch `json:"preferences,omitempty"`
	LastActive  *time.Time        `json:"last_active,omitempty"`
}

type TrackActivityRequest struct {
	ActivityType string `json:"activity_type"`
}

type TrackActivityResponse struct{}

type InvalidateSessionRequest struct{}

type InvalidateSessionResponse struct {
	Invalidated bool `json:"invalidated"`
}

type GetSessionInfoRequest struct{}
