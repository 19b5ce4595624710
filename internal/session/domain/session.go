package domain

import "time"

// Behavior flags appended to Session.Flags. Flags are never removed and may repeat.
const (
	FlagFingerprintMismatch  = "fingerprint_mismatch"
	FlagRapidPosting         = "rapid_posting"
	FlagHighReporting        = "high_reporting"
	FlagComplianceViolations = "compliance_violations"
	FlagHighPostingFrequency = "high_posting_frequency"
	FlagExcessiveReporting   = "excessive_reporting"
)

// ActivityType is the kind of community activity recorded against a session.
type ActivityType string

const (
	ActivityPostCreated       ActivityType = "post_created"
	ActivityReplyCreated      ActivityType = "reply_created"
	ActivityContentLiked      ActivityType = "content_liked"
	ActivityContentReported   ActivityType = "content_reported"
	ActivityComplianceWarning ActivityType = "compliance_warning"
	ActivityEducationalPrompt ActivityType = "educational_prompt"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPostCreated, ActivityReplyCreated, ActivityContentLiked,
		ActivityContentReported, ActivityComplianceWarning, ActivityEducationalPrompt:
		return true
	}
	return false
}

// ActivityCounts holds the per-session activity counters. All counters only increase.
type ActivityCounts struct {
	Posts              int `json:"posts"`
	Replies            int `json:"replies"`
	Likes              int `json:"likes"`
	Reports            int `json:"reports"`
	ComplianceWarnings int `json:"compliance_warnings"`
	EducationalPrompts int `json:"educational_prompts"`
}

// Increment bumps the counter that corresponds to t. Unknown types are ignored.
func (c *ActivityCounts) Increment(t ActivityType) {
	switch t {
	case ActivityPostCreated:
		c.Posts++
	case ActivityReplyCreated:
		c.Replies++
	case ActivityContentLiked:
		c.Likes++
	case ActivityContentReported:
		c.Reports++
	case ActivityComplianceWarning:
		c.ComplianceWarnings++
	case ActivityEducationalPrompt:
		c.EducationalPrompts++
	}
}

// Session is an anonymous, time-bounded identity record. It is never tied to a real account.
// IPHash, UserAgentHash and Fingerprint are internal and must not leave the registry.
type Session struct {
	ID             string
	IPHash         string
	UserAgentHash  string
	Fingerprint    string
	CreatedAt      time.Time
	LastActive     time.Time
	ExpiresAt      time.Time // absolute, CreatedAt + TTL
	Activity       ActivityCounts
	SuspicionScore int
	Flags          []string
	Preferences    Preferences
	Verified       bool // reserved; no code path sets it
}

// Expired reports whether the session is past its absolute expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch moves LastActive forward to now. LastActive never moves backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActive) {
		s.LastActive = now
	}
}

// Penalize adds points to the suspicion score and records flag.
func (s *Session) Penalize(points int, flag string) {
	if points > 0 {
		s.SuspicionScore += points
	}
	s.Flags = append(s.Flags, flag)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Flags != nil {
		c.Flags = append([]string(nil), s.Flags...)
	}
	return &c
}

// Info returns the client-safe projection of s.
func (s *Session) Info() Info {
	flags := make([]string, len(s.Flags))
	copy(flags, s.Flags)
	return Info{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastActive:     s.LastActive,
		ExpiresAt:      s.ExpiresAt,
		Activity:       s.Activity,
		SuspicionScore: s.SuspicionScore,
		Flags:          flags,
		Preferences:    s.Preferences,
		Verified:       s.Verified,
	}
}

// Info is the session snapshot returned to callers. It carries no network identity,
// fingerprint or token material.
type Info struct {
	ID             string
	CreatedAt      time.Time
	LastActive     time.Time
	ExpiresAt      time.Time
	Activity       ActivityCounts
	SuspicionScore int
	Flags          []string
	Preferences    Preferences
	Verified       bool
}

// RequestContext is what the caller knows about the inbound request. The raw IP is only
// used to derive the IP hash and is never stored.
type RequestContext struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
	Accept         string
}

// CreateResult is returned by a successful session start.
type CreateResult struct {
	SessionID   string
	Token       string
	ExpiresAt   time.Time
	Preferences Preferences
}

// Update is the partial update accepted by UpdateSession. Only these fields are mutable.
type Update struct {
	Preferences *PreferencesPatch
	LastActive  *time.Time
}
