package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"jobquest/internal/analysis"
	"jobquest/internal/kb"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockChatter implements Chatter, returning queued responses in order.
type mockChatter struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (m *mockChatter) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	m.prompts = append(m.prompts, user)
	idx := m.calls
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if idx >= len(m.responses) {
		return "", errors.New("no more queued responses")
	}
	return m.responses[idx], nil
}

// mockFetcher implements DocumentFetcher.
type mockFetcher struct {
	data map[string][]byte
	err  error
}

func (m *mockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

const sampleJobDoc = "Senior Data Quality Analyst at Oracle. Austin, TX, remote available. " +
	"Responsibilities include validating data pipelines and maintaining quality dashboards."

const extractionResponse = `{
	"title": "Senior Data Quality Analyst",
	"company": "Oracle",
	"location": "Austin, TX (Remote Available)",
	"responsibilities": "Validate data pipelines and maintain dashboards.",
	"requirements": "SQL and attention to detail.",
	"benefits": "Not specified"
}`

const matchingResponse = `{
	"match_reasoning": "Structured detail-oriented work fits your preferences.",
	"match_score": 85,
	"key_highlights": ["Quiet environment", "Detailed tasks"]
}`

func testCandidate() kb.Result {
	return kb.Result{
		Text:      "Senior Data Quality Analyst...",
		SourceURI: "s3://jobs/analyst.txt",
		Score:     0.75,
		Scored:    true,
	}
}

func TestAnalyze(t *testing.T) {
	chatter := &mockChatter{responses: []string{extractionResponse, matchingResponse}}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte(sampleJobDoc)}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	p, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if p.Title != "Senior Data Quality Analyst" {
		t.Errorf("Title = %q", p.Title)
	}
	// (75 + 85) / 2
	if p.MatchScore != 80 {
		t.Errorf("MatchScore = %d, want 80", p.MatchScore)
	}
	if p.Reasoning != "Structured detail-oriented work fits your preferences." {
		t.Errorf("Reasoning = %q", p.Reasoning)
	}
	if len(p.Highlights) != 2 {
		t.Errorf("Highlights = %v", p.Highlights)
	}
	if p.URL != "s3://jobs/analyst.txt" {
		t.Errorf("URL = %q", p.URL)
	}
	if chatter.calls != 2 {
		t.Errorf("chatter calls = %d, want 2", chatter.calls)
	}
}

// TestAnalyze_IntegerScoreBlend pins the integer-division blend of
// retrieval relevance and matcher score.
func TestAnalyze_IntegerScoreBlend(t *testing.T) {
	chatter := &mockChatter{responses: []string{
		extractionResponse,
		`{"match_reasoning": "ok", "match_score": 90}`,
	}}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte(sampleJobDoc)}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	p, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// (75 + 90) / 2 = 82 with integer division
	if p.MatchScore != 82 {
		t.Errorf("MatchScore = %d, want 82", p.MatchScore)
	}
}

func TestAnalyze_MatcherScoreMissing(t *testing.T) {
	chatter := &mockChatter{responses: []string{
		extractionResponse,
		`{"match_reasoning": "good fit"}`,
	}}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte(sampleJobDoc)}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	p, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.MatchScore != 75 {
		t.Errorf("MatchScore = %d, want relevance 75", p.MatchScore)
	}
	if p.Reasoning != "good fit" {
		t.Errorf("Reasoning = %q", p.Reasoning)
	}
}

// TestAnalyze_MatcherFailure verifies a second-call failure degrades to the
// relevance-based reasoning instead of dropping the candidate.
func TestAnalyze_MatcherFailure(t *testing.T) {
	chatter := &mockChatter{responses: []string{extractionResponse, "not json at all"}}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte(sampleJobDoc)}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	p, err := a.Analyze(context.Background(), testCandidate(), 70, analysis.Generic())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.MatchScore != 70 {
		t.Errorf("MatchScore = %d, want 70", p.MatchScore)
	}
	if !strings.Contains(p.Reasoning, "70%") {
		t.Errorf("Reasoning = %q, want relevance-based fallback", p.Reasoning)
	}
}

func TestAnalyze_ExtractionFailure(t *testing.T) {
	chatter := &mockChatter{responses: []string{"no object here"}}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte(sampleJobDoc)}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	if _, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic()); err == nil {
		t.Fatal("expected error when extraction yields no object")
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	chatter := &mockChatter{}
	fetcher := &mockFetcher{err: errors.New("access denied")}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	if _, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic()); err == nil {
		t.Fatal("expected error on fetch failure")
	}
	if chatter.calls != 0 {
		t.Errorf("chatter called %d times after fetch failure, want 0", chatter.calls)
	}
}

func TestAnalyze_DocumentTooShort(t *testing.T) {
	chatter := &mockChatter{}
	fetcher := &mockFetcher{data: map[string][]byte{"s3://jobs/analyst.txt": []byte("tiny")}}
	a := NewAnalyzer(chatter, fetcher, discardLogger())

	if _, err := a.Analyze(context.Background(), testCandidate(), 75, analysis.Generic()); err == nil {
		t.Fatal("expected error for short document")
	}
}

func TestAnalyze_NilFetcher(t *testing.T) {
	a := NewAnalyzer(&mockChatter{}, nil, discardLogger())

	p, err := a.Analyze(context.Background(), testCandidate(), 60, analysis.Generic())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if p.MatchScore != 60 {
		t.Errorf("MatchScore = %d, want 60", p.MatchScore)
	}
	if !strings.Contains(p.Title, "s3://jobs/analyst.txt") {
		t.Errorf("Title = %q, want generic title with URI", p.Title)
	}
}
