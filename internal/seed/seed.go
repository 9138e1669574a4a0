// Package seed loads the authored analysis templates and the curated job
// bank into storage. Both data sets ship embedded in the binary so a fresh
// install works offline; seeding is idempotent and safe to re-run.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"jobquest/internal/storage"
)

//go:embed templates.json
var templatesJSON []byte

//go:embed jobbank.json
var jobBankJSON []byte

type jobEntry struct {
	JobID      int    `json:"job_id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	MatchScore int    `json:"match_score"`
	Reasoning  string `json:"reasoning"`
	URL        string `json:"url"`
}

// Result reports what a Run inserted or refreshed.
type Result struct {
	Templates int
	Jobs      int
}

// Run upserts every embedded template and job bank entry into the store.
func Run(store *storage.Store) (Result, error) {
	var res Result

	var templates map[string]json.RawMessage
	if err := json.Unmarshal(templatesJSON, &templates); err != nil {
		return res, fmt.Errorf("parsing embedded templates: %w", err)
	}
	for code, record := range templates {
		if err := store.UpsertTemplate(code, string(record)); err != nil {
			return res, fmt.Errorf("seeding template %s: %w", code, err)
		}
		res.Templates++
	}

	var jobs []jobEntry
	if err := json.Unmarshal(jobBankJSON, &jobs); err != nil {
		return res, fmt.Errorf("parsing embedded job bank: %w", err)
	}
	for _, j := range jobs {
		posting := storage.JobPosting{
			ID:         j.JobID,
			Title:      j.Title,
			Company:    j.Company,
			Location:   j.Location,
			MatchScore: j.MatchScore,
			Reasoning:  j.Reasoning,
			URL:        j.URL,
		}
		if err := store.UpsertJob(posting); err != nil {
			return res, fmt.Errorf("seeding job %d: %w", j.JobID, err)
		}
		res.Jobs++
	}

	return res, nil
}
