package domain

import "time"

// Category labels for citizen feedback. A "phan_anh" is a routine
// observation or suggestion; a "khieu_nai" is a formal complaint that
// demands redress.
const (
	LabelGrievance = "khieu_nai"
	LabelReport    = "phan_anh"
)

// Severity levels, ordered low < medium < high.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SeverityRank maps a severity level to its position in the escalation
// order. Unknown values rank below "low" so they never block an upgrade.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Classification is the result of triaging one feedback submission.
// It is produced fresh per call and never mutated afterwards.
type Classification struct {
	Label              string
	Confidence         float64
	ImportantTerms     []string // at most 3, in first-seen order
	Method             string   // "rules" or "statistical"
	Severity           string
	SeverityConfidence float64
}

// Feedback is one citizen submission as stored by the portal.
type Feedback struct {
	ID                 int64
	Title              string
	Description        string
	Citizen            string
	Label              string
	Confidence         float64
	ImportantTerms     string // comma-separated
	Method             string
	Severity           string
	SeverityConfidence float64
	Status             string // "pending" or "classified"
	CreatedAt          time.Time
	ClassifiedAt       time.Time
}

// ClassificationRecord is one row of classification history for a
// feedback item, kept for auditing reclassification sweeps.
type ClassificationRecord struct {
	ID                 int64
	FeedbackID         int64
	Label              string
	Confidence         float64
	Method             string
	Severity           string
	SeverityConfidence float64
	Provider           string // oracle provider, or "" for the rule path
	ClassifiedAt       time.Time
}

// TriageStats aggregates the state of the feedback table.
type TriageStats struct {
	Total           int
	Pending         int
	Grievances      int
	Reports         int
	SeverityLow     int
	SeverityMedium  int
	SeverityHigh    int
	AvgConfidence   float64
	AvgSeverityConf float64
}
