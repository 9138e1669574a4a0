package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobquest/internal/analysis"
	"jobquest/internal/kb"
	"jobquest/internal/profile"
	"jobquest/internal/storage"
)

const (
	// maxCandidates bounds how many retrieval results are considered.
	maxCandidates = 10
	// analyzeConcurrency bounds parallel candidate analysis.
	analyzeConcurrency = 4

	queryPrefix   = "Find job postings suitable for someone who:"
	fallbackQuery = "Find tech jobs suitable for neurodiverse candidates with various work preferences"
)

// JobBank is the precomputed recommendation source, satisfied by
// storage.Store.
type JobBank interface {
	GetJob(id int) (storage.JobPosting, error)
}

// Retriever is the knowledge base dependency, satisfied by kb.Client.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) ([]kb.Result, error)
}

// Selector picks recommendations for a profile. Without free text it
// resolves the template's precomputed job IDs; with free text it retrieves
// and analyzes candidates from the knowledge base. Every path that comes
// up empty lands on the fixed fallback list.
type Selector struct {
	bank      JobBank
	retriever Retriever
	analyzer  *Analyzer
	logger    *slog.Logger
}

// NewSelector builds a selector. retriever may be nil when no knowledge
// base is configured; the retrieval path then degrades to the fallback list.
func NewSelector(bank JobBank, retriever Retriever, analyzer *Analyzer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{bank: bank, retriever: retriever, analyzer: analyzer, logger: logger}
}

// Select returns 1 to 10 postings sorted by match score descending, ties
// keeping their original order. It never returns an empty list.
func (s *Selector) Select(ctx context.Context, tmpl profile.Template, a *analysis.Analysis, freeText string) []Posting {
	var postings []Posting
	if strings.TrimSpace(freeText) == "" {
		postings = s.precomputed(tmpl)
	} else {
		postings = s.retrieved(ctx, a)
	}

	if len(postings) == 0 {
		s.logger.Warn("no recommendations produced, using fallback list")
		return Fallback()
	}

	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].MatchScore > postings[j].MatchScore
	})
	return postings
}

func (s *Selector) precomputed(tmpl profile.Template) []Posting {
	var postings []Posting
	for _, id := range tmpl.RecommendedJobs {
		stored, err := s.bank.GetJob(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Debug("recommended job missing from job bank", "id", id)
			} else {
				s.logger.Warn("job bank lookup failed", "id", id, "error", err)
			}
			continue
		}
		postings = append(postings, fromStored(stored))
	}
	return postings
}

func (s *Selector) retrieved(ctx context.Context, a *analysis.Analysis) []Posting {
	if s.retriever == nil {
		s.logger.Warn("no knowledge base configured for retrieval path")
		return nil
	}

	query := BuildQuery(a)
	results, err := s.retriever.Retrieve(ctx, query, maxCandidates)
	if err != nil {
		s.logger.Warn("knowledge base retrieval failed", "error", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}

	relevance := kb.RelevancePercent(results)

	postings := make([]*Posting, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeConcurrency)
	for i, candidate := range results {
		g.Go(func() error {
			p, err := s.analyzer.Analyze(gctx, candidate, relevance, a)
			if err != nil {
				s.logger.Debug("skipping candidate", "uri", candidate.SourceURI, "error", err)
				return nil
			}
			postings[i] = &p
			return nil
		})
	}
	g.Wait()

	var out []Posting
	for _, p := range postings {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// BuildQuery turns a profile into the retrieval query: the four section
// descriptions plus the insight description, unless the insight is one of
// the no-information sentinels. A profile with no descriptions falls back
// to a generic query.
func BuildQuery(a *analysis.Analysis) string {
	var descriptions []string
	for _, d := range a.SectionDescriptions() {
		if d != "" {
			descriptions = append(descriptions, d)
		}
	}

	insight := a.Insights.Description
	lower := strings.ToLower(insight)
	if insight != "" && !strings.Contains(lower, "no additional insights") && !strings.Contains(lower, "not relevant") {
		descriptions = append(descriptions, insight)
	}

	if len(descriptions) == 0 {
		return fallbackQuery
	}
	return queryPrefix + " " + strings.Join(descriptions, " ")
}
