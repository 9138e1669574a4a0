package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"jobquest/internal/analysis"
)

// Fixed insight copy. These strings are stable API: stored profiles carry
// them and the selector checks for NotRelevantDescription when building
// retrieval queries.
const (
	NoInfoDescription = "No additional information provided"
	NoInfoExplanation = "You did not provide any additional context about your work preferences."

	NotRelevantDescription = "Additional information not relevant for job matching"

	UnprocessedDescription = "Additional information provided, but couldn't be processed"
	UnprocessedExplanation = "We couldn't process your additional information at this time due to technical limitations."

	UncustomizedDescription = "Additional information provided, but we couldn't customize the additional insights"
	UncustomizedExplanation = "You shared specific preferences that provide further context for your work environment needs."
)

const generatorSystemPrompt = `You write brief, personalized insights about a person's work preferences
based on information they volunteered. Always respond with a single JSON object.`

const generatorPromptTemplate = `Based on the user's additional information: %q

Please provide a brief, personalized insight about their work preferences.
Format as a JSON object with these fields:
- description: A concise title/summary (max 10 words)
- explanation: How their additional information informs their work preferences (1-2 sentences)

Response format:
{
    "description": "brief description",
    "explanation": "brief explanation"
}`

// Enricher fills the additional_insights section of a profile from the
// optional free-text answer.
type Enricher struct {
	evaluator *Evaluator
	generator Chatter
	logger    *slog.Logger
}

// NewEnricher builds an enricher. generator may be nil when no LLM is
// configured; useful responses then degrade to the unprocessed sentinel.
func NewEnricher(evaluator *Evaluator, generator Chatter, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{evaluator: evaluator, generator: generator, logger: logger}
}

// Enrich sets a.Insights based on the free-text response. It never fails:
// every degradation path lands on a fixed sentinel pair.
func (e *Enricher) Enrich(ctx context.Context, a *analysis.Analysis, freeText string) {
	if strings.TrimSpace(freeText) == "" {
		a.Insights = analysis.Section{
			Description: NoInfoDescription,
			Explanation: NoInfoExplanation,
		}
		return
	}

	eval := e.evaluator.Evaluate(ctx, freeText)
	if !eval.IsUseful {
		e.logger.Debug("free text not useful, skipping insight generation", "reasoning", eval.Reasoning)
		a.Insights = analysis.Section{
			Description: NotRelevantDescription,
			Explanation: eval.Reasoning,
		}
		return
	}

	if e.generator == nil {
		e.logger.Warn("free text useful but no insight generator configured")
		a.Insights = analysis.Section{
			Description: UnprocessedDescription,
			Explanation: UnprocessedExplanation,
		}
		return
	}

	section, err := e.generate(ctx, freeText)
	if err != nil {
		e.logger.Warn("insight generation failed", "error", err)
		a.Insights = analysis.Section{
			Description: UncustomizedDescription,
			Explanation: UncustomizedExplanation,
		}
		return
	}

	a.Insights = section
}

func (e *Enricher) generate(ctx context.Context, freeText string) (analysis.Section, error) {
	raw, err := e.generator.CompleteJSON(ctx, generatorSystemPrompt, fmt.Sprintf(generatorPromptTemplate, freeText))
	if err != nil {
		return analysis.Section{}, err
	}

	var section analysis.Section
	if err := json.Unmarshal([]byte(raw), &section); err != nil {
		return analysis.Section{}, fmt.Errorf("parsing insight response: %w", err)
	}
	if section.Description == "" || section.Explanation == "" {
		return analysis.Section{}, fmt.Errorf("insight response missing required fields")
	}
	return section, nil
}
