// Package jobs selects job recommendations for a resolved workstyle
// profile, either from the precomputed job bank or by retrieval plus
// LLM analysis of candidate postings.
package jobs

import "jobquest/internal/storage"

// Posting is one job recommendation as returned to the user.
type Posting struct {
	ID         int      `json:"id,omitempty"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	MatchScore int      `json:"match_score"`
	Reasoning  string   `json:"reasoning"`
	Highlights []string `json:"highlights,omitempty"`
	URL        string   `json:"url"`
}

func fromStored(j storage.JobPosting) Posting {
	return Posting{
		ID:         j.ID,
		Title:      j.Title,
		Company:    j.Company,
		Location:   j.Location,
		MatchScore: j.MatchScore,
		Reasoning:  j.Reasoning,
		URL:        j.URL,
	}
}

// Fallback is the fixed recommendation list used when every other path
// comes up empty. It keeps the non-emptiness guarantee without touching
// any external dependency.
func Fallback() []Posting {
	return []Posting{
		{
			Title:      "Data Quality Analyst",
			Company:    "Oracle",
			Location:   "Austin, TX (Remote Available)",
			MatchScore: 95,
			Reasoning:  "Fallback job match for neurodiverse candidates. This role offers a structured environment with clear objectives and minimal interruptions.",
			URL:        "https://careers.oracle.com/jobs",
		},
		{
			Title:      "Software Developer - Backend",
			Company:    "Oracle Cloud Infrastructure",
			Location:   "Seattle, WA (Hybrid)",
			MatchScore: 92,
			Reasoning:  "Fallback job match for neurodiverse candidates. This role features flexible scheduling with dedicated quiet time for deep work.",
			URL:        "https://careers.oracle.com/jobs",
		},
		{
			Title:      "Quality Assurance Engineer",
			Company:    "Oracle",
			Location:   "Reston, VA",
			MatchScore: 88,
			Reasoning:  "Fallback job match for neurodiverse candidates. This role provides structured work environment with clear processes.",
			URL:        "https://careers.oracle.com/jobs",
		},
	}
}
