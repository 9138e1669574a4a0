package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockChatter implements Chatter for testing.
type mockChatter struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (m *mockChatter) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.lastUser = user
	return m.response, m.err
}

func TestEvaluate_Empty(t *testing.T) {
	mock := &mockChatter{}
	e := NewEvaluator(mock)

	for _, input := range []string{"", "   ", "\n\t"} {
		eval := e.Evaluate(context.Background(), input)
		if eval.IsUseful {
			t.Errorf("Evaluate(%q).IsUseful = true, want false", input)
		}
		if eval.Reasoning != "Response is empty" {
			t.Errorf("Reasoning = %q", eval.Reasoning)
		}
	}
	if mock.calls != 0 {
		t.Errorf("chatter called %d times for empty input, want 0", mock.calls)
	}
}

func TestEvaluate_TooShort(t *testing.T) {
	mock := &mockChatter{}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "short")
	if eval.IsUseful {
		t.Error("IsUseful = true, want false")
	}
	if eval.Reasoning != "Response is too short to provide meaningful information" {
		t.Errorf("Reasoning = %q", eval.Reasoning)
	}
	if mock.calls != 0 {
		t.Errorf("chatter called %d times for short input, want 0", mock.calls)
	}
}

func TestEvaluate_Useful(t *testing.T) {
	mock := &mockChatter{
		response: `{"is_useful": true, "reasoning": "Mentions a concrete preference for remote work"}`,
	}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "I strongly prefer fully remote work with async communication")
	if !eval.IsUseful {
		t.Error("IsUseful = false, want true")
	}
	if !strings.Contains(eval.Reasoning, "remote work") {
		t.Errorf("Reasoning = %q", eval.Reasoning)
	}
	if mock.calls != 1 {
		t.Errorf("chatter calls = %d, want 1", mock.calls)
	}
}

func TestEvaluate_NotUseful(t *testing.T) {
	mock := &mockChatter{
		response: `{"is_useful": false, "reasoning": "Off-topic response about the weather"}`,
	}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "the weather has been really nice lately")
	if eval.IsUseful {
		t.Error("IsUseful = true, want false")
	}
	if eval.Reasoning != "Off-topic response about the weather" {
		t.Errorf("Reasoning = %q", eval.Reasoning)
	}
}

// TestEvaluate_JSONWrappedInProse verifies brace extraction handles models
// that narrate around the object.
func TestEvaluate_JSONWrappedInProse(t *testing.T) {
	mock := &mockChatter{
		response: "Here is my evaluation:\n```json\n{\"is_useful\": true, \"reasoning\": \"clear signal\"}\n```",
	}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "I need a quiet environment to focus")
	if !eval.IsUseful {
		t.Error("IsUseful = false, want true")
	}
}

func TestEvaluate_MalformedJSON(t *testing.T) {
	mock := &mockChatter{response: `not valid json {{{`}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "I need a quiet environment to focus")
	if eval.IsUseful {
		t.Error("IsUseful = true, want false on parse failure")
	}
	if eval.Reasoning != "Unable to properly evaluate the response, defaulting to not useful" {
		t.Errorf("Reasoning = %q", eval.Reasoning)
	}
}

func TestEvaluate_ChatterError(t *testing.T) {
	mock := &mockChatter{err: errors.New("connection refused")}
	e := NewEvaluator(mock)

	eval := e.Evaluate(context.Background(), "I need a quiet environment to focus")
	if eval.IsUseful {
		t.Error("IsUseful = true, want false on chatter error")
	}
	if eval.Reasoning != "Error in evaluation process, defaulting to not useful" {
		t.Errorf("Reasoning = %q", eval.Reasoning)
	}
}

func TestEvaluate_NilChatter(t *testing.T) {
	e := NewEvaluator(nil)

	eval := e.Evaluate(context.Background(), "I need a quiet environment to focus")
	if eval.IsUseful {
		t.Error("IsUseful = true, want false with nil chatter")
	}
}
