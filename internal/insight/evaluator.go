// Package insight turns the optional free-text answer into the
// additional_insights profile section. A cheap evaluation pass decides
// whether the text is worth a generation call; anything ambiguous counts
// as not useful so a low-signal response never costs a second completion.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Chatter is the LLM dependency, satisfied by llm.Client.
type Chatter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Evaluation is the usefulness verdict for a free-text response.
type Evaluation struct {
	IsUseful  bool   `json:"is_useful"`
	Reasoning string `json:"reasoning"`
}

const evaluatorSystemPrompt = `You are an expert at analyzing text to determine if it contains
meaningful information about a person's work preferences, strengths, or job-related needs.
You can identify when text is too vague, off-topic, or doesn't add value to job recommendations.`

const evaluatorPromptTemplate = `Analyze this user response and determine if it contains useful information
about their work preferences that could inform job recommendations:

%q

Return a JSON object with:
1. "is_useful" (boolean): Whether the response contains useful information
2. "reasoning" (string): Brief explanation for your decision`

// Evaluator decides whether free text should drive insight generation.
type Evaluator struct {
	chatter Chatter
}

func NewEvaluator(chatter Chatter) *Evaluator {
	return &Evaluator{chatter: chatter}
}

// Evaluate never returns an error: empty and too-short responses are
// rejected without an LLM call, and any evaluation failure defaults to
// not useful.
func (e *Evaluator) Evaluate(ctx context.Context, freeText string) Evaluation {
	trimmed := strings.TrimSpace(freeText)
	if trimmed == "" {
		return Evaluation{Reasoning: "Response is empty"}
	}
	if len(trimmed) < 10 {
		return Evaluation{Reasoning: "Response is too short to provide meaningful information"}
	}

	if e.chatter == nil {
		return Evaluation{Reasoning: "Error in evaluation process, defaulting to not useful"}
	}

	raw, err := e.chatter.CompleteJSON(ctx, evaluatorSystemPrompt, fmt.Sprintf(evaluatorPromptTemplate, freeText))
	if err != nil {
		return Evaluation{Reasoning: "Error in evaluation process, defaulting to not useful"}
	}

	eval, ok := parseEvaluation(raw)
	if !ok {
		return Evaluation{Reasoning: "Unable to properly evaluate the response, defaulting to not useful"}
	}
	return eval
}

// parseEvaluation extracts the first JSON object from the model output.
// Models occasionally wrap the object in prose or code fences.
func parseEvaluation(raw string) (Evaluation, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Evaluation{}, false
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &eval); err != nil {
		return Evaluation{}, false
	}
	return eval, true
}
