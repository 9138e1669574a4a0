// Package assessment orchestrates one questionnaire run end to end:
// validate, resolve the authored profile, enrich insights, select
// recommendations, persist the record.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jobquest/internal/analysis"
	"jobquest/internal/jobs"
	"jobquest/internal/profile"
	"jobquest/internal/questionnaire"
	"jobquest/internal/storage"
)

// Store is the persistence dependency, satisfied by storage.Store.
type Store interface {
	SaveAssessment(a storage.Assessment) error
	GetAssessment(id string) (storage.Assessment, error)
}

// Resolver looks up authored templates, satisfied by profile.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, code string) (profile.Template, error)
}

// Enricher fills the insights section, satisfied by insight.Enricher.
type Enricher interface {
	Enrich(ctx context.Context, a *analysis.Analysis, freeText string)
}

// Selector picks recommendations, satisfied by jobs.Selector.
type Selector interface {
	Select(ctx context.Context, tmpl profile.Template, a *analysis.Analysis, freeText string) []jobs.Posting
}

// Result is a completed assessment as served to clients.
type Result struct {
	ID              string                `json:"assessment_id"`
	Answers         questionnaire.Answers `json:"answers"`
	Profile         *analysis.Analysis    `json:"profile"`
	Recommendations []jobs.Posting        `json:"recommendations"`
	CreatedAt       int64                 `json:"created_at"`
}

// Service runs and stores assessments.
type Service struct {
	store    Store
	resolver Resolver
	enricher Enricher
	selector Selector
	logger   *slog.Logger
}

func NewService(store Store, resolver Resolver, enricher Enricher, selector Selector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		enricher: enricher,
		selector: selector,
		logger:   logger,
	}
}

// Process runs the full pipeline for one submission. Missing answers are
// the only user-correctable failure; a storage failure is logged and the
// result still returned.
func (s *Service) Process(ctx context.Context, answers questionnaire.Answers) (Result, error) {
	if err := questionnaire.Validate(answers); err != nil {
		return Result{}, err
	}

	code := questionnaire.Code(answers)
	freeText := questionnaire.FreeText(answers)

	var prof *analysis.Analysis
	tmpl, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		s.logger.Warn("no authored template for answer combination", "code", code, "error", err)
		prof = analysis.Generic()
	} else if prof = analysis.Normalize(tmpl.Raw); prof == nil {
		s.logger.Warn("template record empty after normalization", "code", code)
		prof = analysis.Generic()
	}

	s.enricher.Enrich(ctx, prof, freeText)

	recommendations := s.selector.Select(ctx, tmpl, prof, freeText)

	result := Result{
		ID:              uuid.NewString(),
		Answers:         answers,
		Profile:         prof,
		Recommendations: recommendations,
		CreatedAt:       time.Now().Unix(),
	}

	if err := s.save(result); err != nil {
		s.logger.Warn("saving assessment failed", "id", result.ID, "error", err)
	}

	return result, nil
}

func (s *Service) save(r Result) error {
	answersJSON, err := json.Marshal(r.Answers)
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}
	profileJSON, err := json.Marshal(r.Profile)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	recsJSON, err := json.Marshal(r.Recommendations)
	if err != nil {
		return fmt.Errorf("marshaling recommendations: %w", err)
	}

	return s.store.SaveAssessment(storage.Assessment{
		ID:              r.ID,
		Answers:         string(answersJSON),
		Profile:         string(profileJSON),
		Recommendations: string(recsJSON),
		CreatedAt:       r.CreatedAt,
	})
}

// Get re-reads a stored assessment. The stored profile and recommendation
// JSON is re-parsed so clients always receive structured data.
func (s *Service) Get(ctx context.Context, id string) (Result, error) {
	rec, err := s.store.GetAssessment(id)
	if err != nil {
		return Result{}, fmt.Errorf("loading assessment %s: %w", id, err)
	}

	result := Result{ID: rec.ID, CreatedAt: rec.CreatedAt}
	if err := json.Unmarshal([]byte(rec.Answers), &result.Answers); err != nil {
		return Result{}, fmt.Errorf("parsing stored answers for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(rec.Profile), &result.Profile); err != nil {
		return Result{}, fmt.Errorf("parsing stored profile for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(rec.Recommendations), &result.Recommendations); err != nil {
		return Result{}, fmt.Errorf("parsing stored recommendations for %s: %w", id, err)
	}
	return result, nil
}
