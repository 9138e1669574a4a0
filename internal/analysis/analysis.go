// Package analysis defines the canonical workstyle profile shape and the
// normalizer that collapses the stored record variants into it. Authored
// templates, historic records and LLM output disagree on encoding: sections
// arrive as nested objects, as flattened "{section}_description" pairs, or
// as JSON serialized into a string. Downstream code only ever sees the
// canonical form.
package analysis

import "encoding/json"

// NoInsights is the description used when the user gave no free-text
// response worth reporting on.
const NoInsights = "No additional insights"

// Sections in canonical order.
const (
	SectionWorkStyle        = "work_style"
	SectionEnvironment      = "environment"
	SectionInteractionLevel = "interaction_level"
	SectionTaskPreference   = "task_preference"
	SectionInsights         = "additional_insights"
)

var coreSections = []string{
	SectionWorkStyle,
	SectionEnvironment,
	SectionInteractionLevel,
	SectionTaskPreference,
}

// Section is one profile dimension: a short description and a longer
// explanation addressed to the user.
type Section struct {
	Description string `json:"description"`
	Explanation string `json:"explanation"`
}

// Analysis is the canonical five-section workstyle profile.
type Analysis struct {
	WorkStyle        Section `json:"work_style"`
	Environment      Section `json:"environment"`
	InteractionLevel Section `json:"interaction_level"`
	TaskPreference   Section `json:"task_preference"`
	Insights         Section `json:"additional_insights"`
}

// SectionDescriptions returns the four core descriptions in canonical order.
// Empty descriptions are included; callers filter as needed.
func (a *Analysis) SectionDescriptions() []string {
	return []string{
		a.WorkStyle.Description,
		a.Environment.Description,
		a.InteractionLevel.Description,
		a.TaskPreference.Description,
	}
}

func (a *Analysis) section(name string) *Section {
	switch name {
	case SectionWorkStyle:
		return &a.WorkStyle
	case SectionEnvironment:
		return &a.Environment
	case SectionInteractionLevel:
		return &a.InteractionLevel
	case SectionTaskPreference:
		return &a.TaskPreference
	case SectionInsights:
		return &a.Insights
	}
	return nil
}

// Normalize collapses a raw record into the canonical shape. Flattened
// field pairs are applied first, nested objects second so the nested form
// wins on conflict. String-typed sections are decoded as JSON when
// possible, otherwise used verbatim as the description. Returns nil for a
// nil or empty input; callers substitute Generic().
func Normalize(raw map[string]any) *Analysis {
	if len(raw) == 0 {
		return nil
	}

	out := &Analysis{
		Insights: Section{Description: NoInsights},
	}

	for _, name := range coreSections {
		sec := out.section(name)
		if v, ok := raw[name+"_description"]; ok {
			sec.Description = asString(v)
		}
		if v, ok := raw[name+"_explanation"]; ok {
			sec.Explanation = asString(v)
		}
	}

	for _, name := range coreSections {
		v, ok := raw[name]
		if !ok {
			continue
		}
		sec := out.section(name)
		switch val := v.(type) {
		case map[string]any:
			if d, ok := val["description"]; ok {
				sec.Description = asString(d)
			}
			if e, ok := val["explanation"]; ok {
				sec.Explanation = asString(e)
			}
		case string:
			var decoded map[string]any
			if err := json.Unmarshal([]byte(val), &decoded); err == nil {
				sec.Description = asString(decoded["description"])
				sec.Explanation = asString(decoded["explanation"])
			} else {
				sec.Description = val
			}
		}
	}

	if v, ok := raw[SectionInsights]; ok {
		switch val := v.(type) {
		case map[string]any:
			out.Insights.Description = stringOr(val["description"], NoInsights)
			out.Insights.Explanation = asString(val["explanation"])
		case string:
			var decoded map[string]any
			if err := json.Unmarshal([]byte(val), &decoded); err == nil {
				out.Insights.Description = stringOr(decoded["description"], NoInsights)
				out.Insights.Explanation = asString(decoded["explanation"])
			} else {
				out.Insights.Description = val
			}
		}
	}

	return out
}

// Generic is the neutral profile served when no authored template matches
// the submitted answer combination.
func Generic() *Analysis {
	return &Analysis{
		WorkStyle: Section{
			Description: "Adaptable working style",
			Explanation: "You appear to have a flexible approach to work scheduling.",
		},
		Environment: Section{
			Description: "Versatile environment preference",
			Explanation: "You can work in various workspace settings.",
		},
		InteractionLevel: Section{
			Description: "Balanced interaction style",
			Explanation: "You can work both independently and collaboratively.",
		},
		TaskPreference: Section{
			Description: "Diverse task orientation",
			Explanation: "You can handle both detail-oriented and creative tasks.",
		},
		Insights: Section{Description: NoInsights},
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	if _, ok := v.(string); ok {
		return ""
	}
	return fallback
}
