// Package questionnaire defines the workstyle questionnaire and validates
// submitted answers. Questions 1 through 4 are multiple choice and required;
// question 5 is optional free text.
package questionnaire

import (
	"fmt"
	"sort"
	"strings"
)

// Option is one selectable answer for a multiple-choice question.
type Option struct {
	Letter string `json:"letter"`
	Label  string `json:"label"`
}

// Question is a single questionnaire entry. FreeResponse questions have no
// options and accept arbitrary text.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []Option `json:"options,omitempty"`
	FreeResponse bool     `json:"free_response,omitempty"`
	Optional     bool     `json:"optional,omitempty"`
}

var questions = []Question{
	{
		ID:   1,
		Text: "How do you prefer to structure your workday?",
		Options: []Option{
			{Letter: "A", Label: "I thrive with a structured schedule"},
			{Letter: "B", Label: "I prefer flexibility in my work hours"},
		},
	},
	{
		ID:   2,
		Text: "What type of workspace do you find most comfortable?",
		Options: []Option{
			{Letter: "A", Label: "Quiet and private spaces"},
			{Letter: "B", Label: "Collaborative and open spaces"},
		},
	},
	{
		ID:   3,
		Text: "How comfortable are you with frequent interactions with colleagues?",
		Options: []Option{
			{Letter: "A", Label: "Prefer minimal interactions"},
			{Letter: "B", Label: "Comfortable with regular teamwork"},
			{Letter: "C", Label: "Enjoy leading or coordinating teams"},
		},
	},
	{
		ID:   4,
		Text: "Do you prefer tasks that are:",
		Options: []Option{
			{Letter: "A", Label: "Highly detailed and focused"},
			{Letter: "B", Label: "Creative and innovative"},
			{Letter: "C", Label: "A balance of both"},
		},
	},
	{
		ID:           5,
		Text:         "Is there anything else we should know about you? (Optional)",
		FreeResponse: true,
		Optional:     true,
	},
}

// Questions returns the questionnaire in presentation order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Answers holds one submission. Q1 through Q4 carry option letters, Q5 is
// free text and may be empty.
type Answers struct {
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`
	Q5 string `json:"q5,omitempty"`
}

// IncompleteError reports missing or invalid required answers. The HTTP
// layer maps it to a 400 so the user can correct the submission.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "missing required answers: " + strings.Join(e.Missing, ", ")
}

// Validate checks that every required question has a recognized option
// letter. Letters are matched case-insensitively.
func Validate(a Answers) error {
	var missing []string
	for i, raw := range []string{a.Q1, a.Q2, a.Q3, a.Q4} {
		key := fmt.Sprintf("q%d", i+1)
		letter := strings.ToUpper(strings.TrimSpace(raw))
		if letter == "" || !validOption(questions[i], letter) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &IncompleteError{Missing: missing}
	}
	return nil
}

func validOption(q Question, letter string) bool {
	for _, opt := range q.Options {
		if opt.Letter == letter {
			return true
		}
	}
	return false
}

// Code collapses the four required answers into the template lookup key,
// e.g. {A,B,C,A} becomes "ABCA".
func Code(a Answers) string {
	parts := []string{a.Q1, a.Q2, a.Q3, a.Q4}
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return strings.Join(parts, "")
}

// FreeText returns the optional question 5 response with surrounding
// whitespace removed.
func FreeText(a Answers) string {
	return strings.TrimSpace(a.Q5)
}

// OptionLabel resolves a selected letter to its display text, or "Unknown"
// when the letter does not match any option.
func OptionLabel(questionID int, letter string) string {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for _, q := range questions {
		if q.ID != questionID {
			continue
		}
		for _, opt := range q.Options {
			if opt.Letter == letter {
				return opt.Label
			}
		}
	}
	return "Unknown"
}
