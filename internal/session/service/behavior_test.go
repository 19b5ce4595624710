package service

import (
	"testing"
	"time"

	"juribank/backend/internal/session/domain"
)

func TestPostsPerHour(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &domain.Session{CreatedAt: created, Activity: domain.ActivityCounts{Posts: 6}}

	if got := postsPerHour(s, created.Add(2*time.Hour)); got != 3 {
		t.Errorf("postsPerHour over 2h = %v, want 3", got)
	}
	// a zero age counts as one millisecond
	if got, want := postsPerHour(s, created), 6*float64(time.Hour.Milliseconds()); got != want {
		t.Errorf("postsPerHour at creation = %v, want %v", got, want)
	}
}

func TestAnalyze(t *testing.T) {
	th := DefaultThresholds()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)

	testCases := []struct {
		name      string
		activity  domain.ActivityType
		counts    domain.ActivityCounts
		now       time.Time
		wantFlags []string
		wantScore int
	}{
		{
			name:     "quiet session",
			activity: domain.ActivityReplyCreated,
			counts:   domain.ActivityCounts{Posts: 2, Replies: 3},
			now:      later,
		},
		{
			name:      "posting frequency only on posts",
			activity:  domain.ActivityPostCreated,
			counts:    domain.ActivityCounts{Posts: 1},
			now:       created.Add(time.Minute),
			wantFlags: []string{domain.FlagHighPostingFrequency},
			wantScore: 5,
		},
		{
			name:     "posting frequency ignored for likes",
			activity: domain.ActivityContentLiked,
			counts:   domain.ActivityCounts{Posts: 1, Likes: 1},
			now:      created.Add(time.Minute),
		},
		{
			name:      "excessive reporting",
			activity:  domain.ActivityContentReported,
			counts:    domain.ActivityCounts{Posts: 1, Reports: 2},
			now:       later,
			wantFlags: []string{domain.FlagExcessiveReporting},
			wantScore: 3,
		},
		{
			name:      "high reporting without excess",
			activity:  domain.ActivityContentReported,
			counts:    domain.ActivityCounts{Posts: 10, Reports: 6},
			now:       later,
			wantFlags: []string{domain.FlagHighReporting},
			wantScore: 3,
		},
		{
			name:      "targeted before general",
			activity:  domain.ActivityContentReported,
			counts:    domain.ActivityCounts{Reports: 6},
			now:       later,
			wantFlags: []string{domain.FlagExcessiveReporting, domain.FlagHighReporting},
			wantScore: 6,
		},
		{
			name:      "rapid posting",
			activity:  domain.ActivityReplyCreated,
			counts:    domain.ActivityCounts{Posts: 11, Replies: 3},
			now:       later,
			wantFlags: []string{domain.FlagRapidPosting},
			wantScore: 5,
		},
		{
			name:     "rapid posting balanced by replies",
			activity: domain.ActivityReplyCreated,
			counts:   domain.ActivityCounts{Posts: 11, Replies: 4},
			now:      later,
		},
		{
			name:      "compliance violations",
			activity:  domain.ActivityEducationalPrompt,
			counts:    domain.ActivityCounts{ComplianceWarnings: 4, EducationalPrompts: 1},
			now:       later,
			wantFlags: []string{domain.FlagComplianceViolations},
			wantScore: 10,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &domain.Session{CreatedAt: created, Activity: tc.counts}
			found, banned := analyze(s, tc.activity, th, tc.now)
			if banned {
				t.Error("unexpected ban")
			}
			if len(found) != len(tc.wantFlags) || len(s.Flags) != len(tc.wantFlags) {
				t.Fatalf("flags = %v, want %v", s.Flags, tc.wantFlags)
			}
			for i, f := range tc.wantFlags {
				if found[i].flag != f || s.Flags[i] != f {
					t.Errorf("flag[%d] = %q, want %q", i, s.Flags[i], f)
				}
			}
			if s.SuspicionScore != tc.wantScore {
				t.Errorf("score = %d, want %d", s.SuspicionScore, tc.wantScore)
			}
		})
	}
}

func TestAnalyze_StopsAtBanThreshold(t *testing.T) {
	th := DefaultThresholds()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &domain.Session{
		CreatedAt:      created,
		SuspicionScore: 98,
		Activity:       domain.ActivityCounts{Reports: 6},
	}
	found, banned := analyze(s, domain.ActivityContentReported, th, created.Add(time.Hour))
	if !banned {
		t.Fatal("expected ban once the score exceeds the threshold")
	}
	if len(found) != 1 || found[0].flag != domain.FlagExcessiveReporting {
		t.Errorf("found = %+v, want only excessive_reporting", found)
	}
	if s.SuspicionScore != 101 {
		t.Errorf("score = %d, want 101", s.SuspicionScore)
	}
}

func TestAnalyze_EqualToThresholdIsNotBanned(t *testing.T) {
	th := DefaultThresholds()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &domain.Session{
		CreatedAt:      created,
		SuspicionScore: 97,
		Activity:       domain.ActivityCounts{Reports: 1},
	}
	if _, banned := analyze(s, domain.ActivityContentReported, th, created.Add(time.Hour)); banned {
		t.Errorf("score %d should not ban at threshold %d", s.SuspicionScore, th.BanThreshold)
	}
}
