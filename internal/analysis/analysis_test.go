package analysis

import (
	"encoding/json"
	"testing"
)

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Errorf("Normalize(nil) = %+v, want nil", got)
	}
	if got := Normalize(map[string]any{}); got != nil {
		t.Errorf("Normalize(empty) = %+v, want nil", got)
	}
}

func TestNormalizeNested(t *testing.T) {
	raw := map[string]any{
		"work_style": map[string]any{
			"description": "Structured",
			"explanation": "You prefer routine.",
		},
		"environment": map[string]any{
			"description": "Quiet workspace",
		},
	}

	got := Normalize(raw)
	if got == nil {
		t.Fatal("Normalize returned nil")
	}
	if got.WorkStyle.Description != "Structured" {
		t.Errorf("WorkStyle.Description = %q", got.WorkStyle.Description)
	}
	if got.WorkStyle.Explanation != "You prefer routine." {
		t.Errorf("WorkStyle.Explanation = %q", got.WorkStyle.Explanation)
	}
	if got.Environment.Explanation != "" {
		t.Errorf("Environment.Explanation = %q, want empty", got.Environment.Explanation)
	}
	if got.InteractionLevel.Description != "" {
		t.Errorf("InteractionLevel.Description = %q, want empty", got.InteractionLevel.Description)
	}
	if got.Insights.Description != NoInsights {
		t.Errorf("Insights.Description = %q, want %q", got.Insights.Description, NoInsights)
	}
}

func TestNormalizeFlattened(t *testing.T) {
	raw := map[string]any{
		"work_style_description":        "Flexible",
		"work_style_explanation":        "You adapt your schedule.",
		"task_preference_description":   "Creative tasks",
		"interaction_level_explanation": "You enjoy teamwork.",
	}

	got := Normalize(raw)
	if got.WorkStyle.Description != "Flexible" {
		t.Errorf("WorkStyle.Description = %q", got.WorkStyle.Description)
	}
	if got.TaskPreference.Description != "Creative tasks" {
		t.Errorf("TaskPreference.Description = %q", got.TaskPreference.Description)
	}
	if got.InteractionLevel.Explanation != "You enjoy teamwork." {
		t.Errorf("InteractionLevel.Explanation = %q", got.InteractionLevel.Explanation)
	}
}

// TestNormalizeNestedWinsOverFlattened mixes both encodings for the same
// section and verifies the nested object takes precedence.
func TestNormalizeNestedWinsOverFlattened(t *testing.T) {
	raw := map[string]any{
		"work_style_description": "from flattened",
		"work_style": map[string]any{
			"description": "from nested",
		},
	}

	got := Normalize(raw)
	if got.WorkStyle.Description != "from nested" {
		t.Errorf("WorkStyle.Description = %q, want %q", got.WorkStyle.Description, "from nested")
	}
}

func TestNormalizeJSONStringSection(t *testing.T) {
	raw := map[string]any{
		"environment": `{"description":"Open office","explanation":"You like energy around you."}`,
	}

	got := Normalize(raw)
	if got.Environment.Description != "Open office" {
		t.Errorf("Environment.Description = %q", got.Environment.Description)
	}
	if got.Environment.Explanation != "You like energy around you." {
		t.Errorf("Environment.Explanation = %q", got.Environment.Explanation)
	}
}

// TestNormalizePlainStringSection verifies a non-JSON string becomes the
// description as-is.
func TestNormalizePlainStringSection(t *testing.T) {
	raw := map[string]any{
		"task_preference": "Detail-oriented work",
	}

	got := Normalize(raw)
	if got.TaskPreference.Description != "Detail-oriented work" {
		t.Errorf("TaskPreference.Description = %q", got.TaskPreference.Description)
	}
}

func TestNormalizeInsights(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		wantDesc string
		wantExp  string
	}{
		{
			"absent defaults",
			map[string]any{"work_style": map[string]any{"description": "x"}},
			NoInsights, "",
		},
		{
			"nested",
			map[string]any{"additional_insights": map[string]any{"description": "Likes quiet", "explanation": "Stated directly."}},
			"Likes quiet", "Stated directly.",
		},
		{
			"nested missing description",
			map[string]any{"additional_insights": map[string]any{"explanation": "only this"}},
			NoInsights, "only this",
		},
		{
			"json string",
			map[string]any{"additional_insights": `{"description":"Remote preference","explanation":"From free text."}`},
			"Remote preference", "From free text.",
		},
		{
			"plain string",
			map[string]any{"additional_insights": "just text"},
			"just text", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.Insights.Description != tt.wantDesc {
				t.Errorf("Insights.Description = %q, want %q", got.Insights.Description, tt.wantDesc)
			}
			if got.Insights.Explanation != tt.wantExp {
				t.Errorf("Insights.Explanation = %q, want %q", got.Insights.Explanation, tt.wantExp)
			}
		})
	}
}

// TestNormalizeAllFieldsNonNil round-trips through JSON and verifies every
// section marshals with both fields present.
func TestNormalizeAllFieldsNonNil(t *testing.T) {
	got := Normalize(map[string]any{"work_style": map[string]any{"description": "x"}})

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, section := range []string{"work_style", "environment", "interaction_level", "task_preference", "additional_insights"} {
		sec, ok := decoded[section]
		if !ok {
			t.Errorf("section %q missing from output", section)
			continue
		}
		for _, field := range []string{"description", "explanation"} {
			if _, ok := sec[field]; !ok {
				t.Errorf("section %q missing field %q", section, field)
			}
		}
	}
}

func TestGeneric(t *testing.T) {
	g := Generic()
	if g.WorkStyle.Description != "Adaptable working style" {
		t.Errorf("WorkStyle.Description = %q", g.WorkStyle.Description)
	}
	if g.Insights.Description != NoInsights {
		t.Errorf("Insights.Description = %q, want %q", g.Insights.Description, NoInsights)
	}
	for i, desc := range g.SectionDescriptions() {
		if desc == "" {
			t.Errorf("section %d has empty description", i)
		}
	}
}

func TestSectionDescriptionsOrder(t *testing.T) {
	a := &Analysis{
		WorkStyle:        Section{Description: "one"},
		Environment:      Section{Description: "two"},
		InteractionLevel: Section{Description: "three"},
		TaskPreference:   Section{Description: "four"},
	}
	got := a.SectionDescriptions()
	want := []string{"one", "two", "three", "four"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SectionDescriptions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
