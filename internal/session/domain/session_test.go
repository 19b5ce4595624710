package domain

import (
	"testing"
	"time"
)

func TestActivityType_Valid(t *testing.T) {
	testCases := []struct {
		activity ActivityType
		want     bool
	}{
		{ActivityPostCreated, true},
		{ActivityReplyCreated, true},
		{ActivityContentLiked, true},
		{ActivityContentReported, true},
		{ActivityComplianceWarning, true},
		{ActivityEducationalPrompt, true},
		{"", false},
		{"post_deleted", false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.activity), func(t *testing.T) {
			if got := tc.activity.Valid(); got != tc.want {
				t.Errorf("Valid(%q) = %v, want %v", tc.activity, got, tc.want)
			}
		})
	}
}

func TestActivityCounts_IncrementOnePerType(t *testing.T) {
	var c ActivityCounts
	c.Increment(ActivityPostCreated)
	c.Increment(ActivityReplyCreated)
	c.Increment(ActivityReplyCreated)
	c.Increment(ActivityContentLiked)
	c.Increment(ActivityContentReported)
	c.Increment(ActivityComplianceWarning)
	c.Increment(ActivityEducationalPrompt)
	c.Increment("unknown")

	want := ActivityCounts{Posts: 1, Replies: 2, Likes: 1, Reports: 1, ComplianceWarnings: 1, EducationalPrompts: 1}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}

func TestSession_ExpiredIsStrict(t *testing.T) {
	exp := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: exp}
	if s.Expired(exp) {
		t.Error("session should not be expired exactly at ExpiresAt")
	}
	if !s.Expired(exp.Add(time.Nanosecond)) {
		t.Error("session should be expired after ExpiresAt")
	}
}

func TestSession_TouchNeverMovesBackwards(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{CreatedAt: now, LastActive: now}
	s.Touch(now.Add(-time.Minute))
	if !s.LastActive.Equal(now) {
		t.Errorf("LastActive = %v, want %v", s.LastActive, now)
	}
	s.Touch(now.Add(time.Minute))
	if !s.LastActive.Equal(now.Add(time.Minute)) {
		t.Errorf("LastActive = %v, want %v", s.LastActive, now.Add(time.Minute))
	}
}

func TestSession_CloneDoesNotShareFlags(t *testing.T) {
	s := &Session{ID: "s1", Flags: []string{FlagRapidPosting}}
	c := s.Clone()
	c.Penalize(5, FlagHighReporting)
	if len(s.Flags) != 1 {
		t.Errorf("original flags = %v, want 1 entry", s.Flags)
	}
	if s.SuspicionScore != 0 {
		t.Errorf("original suspicion = %d, want 0", s.SuspicionScore)
	}
}

func TestPreferences_MergeOnlyAppliesSetFields(t *testing.T) {
	off := false
	large := "large"
	p := DefaultPreferences().Merge(PreferencesPatch{
		Notifications: &off,
		Accessibility: &AccessibilityPatch{FontSize: &large},
	})
	if p.Notifications {
		t.Error("Notifications should be false after merge")
	}
	if !p.RealTimeUpdates {
		t.Error("RealTimeUpdates should keep its default")
	}
	if p.Accessibility.FontSize != "large" {
		t.Errorf("FontSize = %q, want large", p.Accessibility.FontSize)
	}
	if p.Accessibility.HighContrast || p.Accessibility.ReducedMotion {
		t.Error("untouched accessibility fields should keep defaults")
	}
}
