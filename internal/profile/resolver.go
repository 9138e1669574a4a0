// Package profile resolves a 4-letter answer code to its authored
// workstyle template.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"jobquest/internal/storage"
)

// Template is one authored profile entry. Raw preserves the stored record
// shape for the normalizer; RecommendedJobs is parsed out because the
// precomputed selector path needs it as IDs.
type Template struct {
	Code            string
	Raw             map[string]any
	RecommendedJobs []int
}

// TemplateStore is the storage dependency, satisfied by storage.Store.
type TemplateStore interface {
	GetTemplate(code string) (storage.AnalysisTemplate, error)
}

// Resolver looks up authored templates by answer code.
type Resolver struct {
	store TemplateStore
}

func NewResolver(store TemplateStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the template for an exact answer code. A combination
// outside the authored set yields storage.ErrNotFound; callers fall back
// to the generic profile.
func (r *Resolver) Resolve(ctx context.Context, code string) (Template, error) {
	rec, err := r.store.GetTemplate(code)
	if err != nil {
		return Template{}, fmt.Errorf("looking up template %q: %w", code, err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(rec.Record), &raw); err != nil {
		return Template{}, fmt.Errorf("parsing template %q: %w", code, err)
	}

	return Template{
		Code:            code,
		Raw:             raw,
		RecommendedJobs: parseJobIDs(raw["recommended_jobs"]),
	}, nil
}

// parseJobIDs accepts the two stored encodings of recommended_jobs: a JSON
// array of numbers, or that same array serialized into a string.
func parseJobIDs(v any) []int {
	switch val := v.(type) {
	case []any:
		ids := make([]int, 0, len(val))
		for _, item := range val {
			if n, ok := item.(float64); ok {
				ids = append(ids, int(n))
			}
		}
		return ids
	case string:
		var nums []float64
		if err := json.Unmarshal([]byte(val), &nums); err != nil {
			return nil
		}
		ids := make([]int, len(nums))
		for i, n := range nums {
			ids[i] = int(n)
		}
		return ids
	}
	return nil
}
