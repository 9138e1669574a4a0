package insight

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"jobquest/internal/analysis"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func usefulEvaluator() (*Evaluator, *mockChatter) {
	mock := &mockChatter{response: `{"is_useful": true, "reasoning": "concrete preference"}`}
	return NewEvaluator(mock), mock
}

func notUsefulEvaluator() *Evaluator {
	return NewEvaluator(&mockChatter{response: `{"is_useful": false, "reasoning": "vague"}`})
}

func TestEnrich_EmptyFreeText(t *testing.T) {
	evalMock := &mockChatter{}
	genMock := &mockChatter{}
	e := NewEnricher(NewEvaluator(evalMock), genMock, discardLogger())

	for _, input := range []string{"", "   \n\t  "} {
		a := analysis.Generic()
		e.Enrich(context.Background(), a, input)

		if a.Insights.Description != NoInfoDescription {
			t.Errorf("Description = %q, want %q", a.Insights.Description, NoInfoDescription)
		}
		if a.Insights.Explanation != NoInfoExplanation {
			t.Errorf("Explanation = %q, want %q", a.Insights.Explanation, NoInfoExplanation)
		}
	}

	if evalMock.calls != 0 || genMock.calls != 0 {
		t.Errorf("LLM called for empty input: evaluator=%d generator=%d", evalMock.calls, genMock.calls)
	}
}

// TestEnrich_EmptyIsIdempotent runs enrichment twice over the same profile
// and verifies the result does not drift.
func TestEnrich_EmptyIsIdempotent(t *testing.T) {
	e := NewEnricher(NewEvaluator(&mockChatter{}), &mockChatter{}, discardLogger())

	a := analysis.Generic()
	e.Enrich(context.Background(), a, "")
	first := a.Insights
	e.Enrich(context.Background(), a, "")

	if a.Insights != first {
		t.Errorf("second Enrich changed insights: %+v -> %+v", first, a.Insights)
	}
}

func TestEnrich_NotUseful(t *testing.T) {
	genMock := &mockChatter{}
	e := NewEnricher(notUsefulEvaluator(), genMock, discardLogger())

	a := analysis.Generic()
	e.Enrich(context.Background(), a, "the weather has been really nice lately")

	if a.Insights.Description != NotRelevantDescription {
		t.Errorf("Description = %q, want %q", a.Insights.Description, NotRelevantDescription)
	}
	if a.Insights.Explanation != "vague" {
		t.Errorf("Explanation = %q, want evaluator reasoning", a.Insights.Explanation)
	}
	if genMock.calls != 0 {
		t.Errorf("generator called %d times for not-useful input, want 0", genMock.calls)
	}
}

func TestEnrich_UsefulGenerated(t *testing.T) {
	evaluator, _ := usefulEvaluator()
	genMock := &mockChatter{
		response: `{"description": "Remote-first preference", "explanation": "You work best with async communication and few interruptions."}`,
	}
	e := NewEnricher(evaluator, genMock, discardLogger())

	a := analysis.Generic()
	e.Enrich(context.Background(), a, "I strongly prefer fully remote work")

	if a.Insights.Description != "Remote-first preference" {
		t.Errorf("Description = %q", a.Insights.Description)
	}
	if genMock.calls != 1 {
		t.Errorf("generator calls = %d, want 1", genMock.calls)
	}
}

func TestEnrich_UsefulNoGenerator(t *testing.T) {
	evaluator, _ := usefulEvaluator()
	e := NewEnricher(evaluator, nil, discardLogger())

	a := analysis.Generic()
	e.Enrich(context.Background(), a, "I strongly prefer fully remote work")

	if a.Insights.Description != UnprocessedDescription {
		t.Errorf("Description = %q, want %q", a.Insights.Description, UnprocessedDescription)
	}
	if a.Insights.Explanation != UnprocessedExplanation {
		t.Errorf("Explanation = %q, want %q", a.Insights.Explanation, UnprocessedExplanation)
	}
}

func TestEnrich_GeneratorError(t *testing.T) {
	evaluator, _ := usefulEvaluator()
	genMock := &mockChatter{err: errors.New("boom")}
	e := NewEnricher(evaluator, genMock, discardLogger())

	a := analysis.Generic()
	e.Enrich(context.Background(), a, "I strongly prefer fully remote work")

	if a.Insights.Description != UncustomizedDescription {
		t.Errorf("Description = %q, want %q", a.Insights.Description, UncustomizedDescription)
	}
}

// TestEnrich_GeneratorSchemaViolation covers responses that parse but miss
// required fields.
func TestEnrich_GeneratorSchemaViolation(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "plain text answer"},
		{"missing explanation", `{"description": "only a title"}`},
		{"missing description", `{"explanation": "only an explanation"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator, _ := usefulEvaluator()
			e := NewEnricher(evaluator, &mockChatter{response: tt.response}, discardLogger())

			a := analysis.Generic()
			e.Enrich(context.Background(), a, "I strongly prefer fully remote work")

			if a.Insights.Description != UncustomizedDescription {
				t.Errorf("Description = %q, want %q", a.Insights.Description, UncustomizedDescription)
			}
		})
	}
}
