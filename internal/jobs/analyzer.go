package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"jobquest/internal/analysis"
	"jobquest/internal/docs"
	"jobquest/internal/kb"
)

// minContentLength rejects retrieved documents too thin to analyze.
const minContentLength = 50

// Chatter is the LLM dependency, satisfied by llm.Client.
type Chatter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// DocumentFetcher downloads candidate documents, satisfied by docs.Fetcher.
type DocumentFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

const extractionSystemPrompt = `You are an expert at reading job postings and pulling out the key details
that matter for job seekers. Always respond with a single JSON object.`

const extractionPromptTemplate = `Extract the following information from this job description:

Job Content: %q
Source URI: %s

Return a JSON object with these fields:
- title: The job title
- company: The company or organization
- location: The job location (city, state, remote status)
- responsibilities: A brief summary of key responsibilities (1-2 sentences)
- requirements: A brief summary of key requirements (1-2 sentences)
- benefits: Any mentioned benefits or perks (if available)

If any field cannot be confidently extracted, use a reasonable default based on the document.`

const matchingSystemPrompt = `You are an expert at matching job characteristics to candidate preferences.
You can analyze a job description and a candidate's profile to identify specific aspects
of the job that align with the candidate's work style, environment needs, interaction
preferences, and task preferences. Always respond with a single JSON object.`

const matchingPromptTemplate = `Generate a personalized explanation for why this job matches the candidate's preferences:

JOB INFORMATION:
%s

CANDIDATE PROFILE:
%s

Return a JSON object with:
- match_reasoning: A 1-2 sentence personalized explanation of why this job is a good match
- match_score: A score from 0-100 indicating how well the job matches the candidate (where 100 is perfect)
- key_highlights: 2-3 bullet points (very short phrases) highlighting job aspects that match preferences`

// maxContentChars truncates long documents before prompting.
const maxContentChars = 5000

type jobInfo struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	Location         string `json:"location"`
	Responsibilities string `json:"responsibilities"`
	Requirements     string `json:"requirements"`
	Benefits         string `json:"benefits"`
}

type matchInfo struct {
	MatchReasoning string   `json:"match_reasoning"`
	MatchScore     *int     `json:"match_score"`
	KeyHighlights  []string `json:"key_highlights"`
}

// Analyzer turns one retrieved candidate into a scored recommendation by
// fetching the source document and running extraction and matching
// completions over it.
type Analyzer struct {
	chatter Chatter
	fetcher DocumentFetcher
	logger  *slog.Logger
}

// NewAnalyzer builds an analyzer. fetcher may be nil when object storage
// is not configured; candidates then carry generic details at the
// retrieval relevance score.
func NewAnalyzer(chatter Chatter, fetcher DocumentFetcher, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{chatter: chatter, fetcher: fetcher, logger: logger}
}

// Analyze scores one candidate against the profile. The final score is the
// integer mean of the retrieval relevance and the matching score; when the
// matcher reports no score, the relevance stands alone.
func (a *Analyzer) Analyze(ctx context.Context, candidate kb.Result, relevance int, prof *analysis.Analysis) (Posting, error) {
	if a.fetcher == nil {
		return Posting{
			Title:      "Job from " + candidate.SourceURI,
			Company:    "Unknown Company",
			Location:   "Unknown Location",
			MatchScore: relevance,
			Reasoning:  "Unable to access job details without document storage.",
			URL:        candidate.SourceURI,
		}, nil
	}

	data, err := a.fetcher.Fetch(ctx, candidate.SourceURI)
	if err != nil {
		return Posting{}, fmt.Errorf("fetching %s: %w", candidate.SourceURI, err)
	}

	content, err := docs.ExtractText(data)
	if err != nil {
		return Posting{}, fmt.Errorf("extracting text from %s: %w", candidate.SourceURI, err)
	}
	if len(strings.TrimSpace(content)) < minContentLength {
		return Posting{}, fmt.Errorf("document %s too short to analyze", candidate.SourceURI)
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	info, err := a.extract(ctx, content, candidate.SourceURI)
	if err != nil {
		return Posting{}, fmt.Errorf("extracting job info from %s: %w", candidate.SourceURI, err)
	}

	match := a.match(ctx, info, prof, relevance)

	finalScore := relevance
	if match.MatchScore != nil {
		finalScore = (relevance + *match.MatchScore) / 2
	}

	return Posting{
		Title:      defaultStr(info.Title, "Unknown Position"),
		Company:    defaultStr(info.Company, "Unknown Company"),
		Location:   defaultStr(info.Location, "Unknown Location"),
		MatchScore: finalScore,
		Reasoning:  match.MatchReasoning,
		Highlights: match.KeyHighlights,
		URL:        candidate.SourceURI,
	}, nil
}

func (a *Analyzer) extract(ctx context.Context, content, uri string) (jobInfo, error) {
	raw, err := a.chatter.CompleteJSON(ctx, extractionSystemPrompt, fmt.Sprintf(extractionPromptTemplate, content, uri))
	if err != nil {
		return jobInfo{}, err
	}

	var info jobInfo
	if !parseObject(raw, &info) {
		return jobInfo{}, fmt.Errorf("no structured job info in response")
	}
	return info, nil
}

// match degrades to a relevance-based reasoning instead of failing: a
// candidate with extracted details is still worth recommending.
func (a *Analyzer) match(ctx context.Context, info jobInfo, prof *analysis.Analysis, relevance int) matchInfo {
	fallback := matchInfo{
		MatchReasoning: fmt.Sprintf("This position matches your preferences with a %d%% compatibility score.", relevance),
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fallback
	}
	profJSON, err := json.Marshal(prof)
	if err != nil {
		return fallback
	}

	raw, err := a.chatter.CompleteJSON(ctx, matchingSystemPrompt, fmt.Sprintf(matchingPromptTemplate, infoJSON, profJSON))
	if err != nil {
		a.logger.Debug("matching completion failed", "error", err)
		return fallback
	}

	var match matchInfo
	if !parseObject(raw, &match) {
		return fallback
	}
	if match.MatchReasoning == "" {
		match.MatchReasoning = fallback.MatchReasoning
	}
	return match
}

// parseObject extracts the first JSON object from model output that may be
// wrapped in prose or code fences.
func parseObject(raw string, v any) bool {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v) == nil
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
