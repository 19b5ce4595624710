package service

import (
	"time"

	"juribank/backend/internal/session/domain"
)

// Thresholds are the tunable limits and penalties of the behavior analyzer.
type Thresholds struct {
	// BanThreshold is the suspicion score that, once exceeded, bans the IP hash.
	BanThreshold int
	// FingerprintMismatchPenalty is added when a validation's headers do not match the session.
	FingerprintMismatchPenalty int

	RapidPostingMinPosts   int
	RapidPostingReplyRatio int
	RapidPostingPenalty    int

	HighReportingMinReports int
	HighReportingPenalty    int

	ComplianceMaxWarnings      int
	ComplianceViolationPenalty int

	PostsPerHourLimit       int
	PostingFrequencyPenalty int

	ExcessiveReportingPenalty int
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BanThreshold:               100,
		FingerprintMismatchPenalty: 10,
		RapidPostingMinPosts:       10,
		RapidPostingReplyRatio:     3,
		RapidPostingPenalty:        5,
		HighReportingMinReports:    5,
		HighReportingPenalty:       3,
		ComplianceMaxWarnings:      3,
		ComplianceViolationPenalty: 10,
		PostsPerHourLimit:          10,
		PostingFrequencyPenalty:    5,
		ExcessiveReportingPenalty:  3,
	}
}

// rule is one behavior check. Rules with a trigger only run for that activity type;
// rules without one run on every tracked activity.
type rule struct {
	flag    string
	trigger domain.ActivityType
	when    func(s *domain.Session, th Thresholds, now time.Time) bool
	points  func(th Thresholds) int
}

// Targeted rules are listed first and run before the general ones.
var behaviorRules = []rule{
	{
		flag:    domain.FlagHighPostingFrequency,
		trigger: domain.ActivityPostCreated,
		when: func(s *domain.Session, th Thresholds, now time.Time) bool {
			return postsPerHour(s, now) > float64(th.PostsPerHourLimit)
		},
		points: func(th Thresholds) int { return th.PostingFrequencyPenalty },
	},
	{
		flag:    domain.FlagExcessiveReporting,
		trigger: domain.ActivityContentReported,
		when: func(s *domain.Session, _ Thresholds, _ time.Time) bool {
			return s.Activity.Reports > s.Activity.Posts+s.Activity.Replies
		},
		points: func(th Thresholds) int { return th.ExcessiveReportingPenalty },
	},
	{
		flag: domain.FlagRapidPosting,
		when: func(s *domain.Session, th Thresholds, _ time.Time) bool {
			a := s.Activity
			return a.Posts > th.RapidPostingMinPosts && a.Posts > th.RapidPostingReplyRatio*a.Replies
		},
		points: func(th Thresholds) int { return th.RapidPostingPenalty },
	},
	{
		flag: domain.FlagHighReporting,
		when: func(s *domain.Session, th Thresholds, _ time.Time) bool {
			return s.Activity.Reports > th.HighReportingMinReports
		},
		points: func(th Thresholds) int { return th.HighReportingPenalty },
	},
	{
		flag: domain.FlagComplianceViolations,
		when: func(s *domain.Session, th Thresholds, _ time.Time) bool {
			return s.Activity.ComplianceWarnings > th.ComplianceMaxWarnings
		},
		points: func(th Thresholds) int { return th.ComplianceViolationPenalty },
	},
}

// postsPerHour is the session's post rate since creation. Ages under a millisecond count as one.
func postsPerHour(s *domain.Session, now time.Time) float64 {
	ageMs := float64(now.Sub(s.CreatedAt).Milliseconds())
	if ageMs < 1 {
		ageMs = 1
	}
	return float64(s.Activity.Posts) / ageMs * float64(time.Hour.Milliseconds())
}

// finding is a rule that fired during one evaluation.
type finding struct {
	flag   string
	points int
}

// analyze applies every rule that matches activity to s, in order. It stops at the first
// penalty that pushes the score over the ban threshold and reports whether that happened.
func analyze(s *domain.Session, activity domain.ActivityType, th Thresholds, now time.Time) ([]finding, bool) {
	var found []finding
	for _, r := range behaviorRules {
		if r.trigger != "" && r.trigger != activity {
			continue
		}
		if !r.when(s, th, now) {
			continue
		}
		p := r.points(th)
		s.Penalize(p, r.flag)
		found = append(found, finding{flag: r.flag, points: p})
		if s.SuspicionScore > th.BanThreshold {
			return found, true
		}
	}
	return found, false
}
