package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// AnalysisTemplate is an authored workstyle profile keyed by a 4-letter
// answer code (e.g. "AABC"). Record holds the raw JSON exactly as seeded;
// the shape is heterogeneous across entries, so parsing is left to callers.
type AnalysisTemplate struct {
	Code      string
	Record    string // JSON object stored as text
	CreatedAt time.Time
}

// JobPosting is a curated job bank entry used for precomputed recommendations.
type JobPosting struct {
	ID         int
	Title      string
	Company    string
	Location   string
	MatchScore int
	Reasoning  string
	URL        string
}

// Assessment is one completed questionnaire run. Answers, Profile and
// Recommendations are JSON stored as text; CreatedAt is epoch seconds.
type Assessment struct {
	ID              string
	Answers         string
	Profile         string
	Recommendations string
	CreatedAt       int64
}
