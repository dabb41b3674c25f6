package models

// Preset bundles a model, an optional temperature and a system prompt
// under a name the user can pick in one step.
type Preset struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature,omitempty"`
	SystemPrompt string   `json:"systemPrompt"`
}

// Selection is the set of send parameters currently chosen by the user
type Selection struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	PresetID     string
}

// DefaultSelection returns the selection used before any settings exist
func DefaultSelection() Selection {
	return Selection{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
}

func temp(t float64) *float64 { return &t }

// DefaultPresets returns the built-in presets
func DefaultPresets() []Preset {
	return []Preset{
		{
			ID:          "coder",
			Name:        "Coder",
			Description: "Precise programming assistant",
			Model:       "claude-sonnet-4",
			Temperature: temp(0.2),
			SystemPrompt: `You are an expert software engineer. When answering:
- Prefer working code over prose
- Point out bugs and edge cases
- Keep explanations short unless asked for detail`,
		},
		{
			ID:          "writer",
			Name:        "Writer",
			Description: "Creative writing assistant",
			Model:       "gpt-5",
			Temperature: temp(1.2),
			SystemPrompt: `You are a creative writing assistant. Your goal is to:
- Help with storytelling and content creation
- Maintain consistent tone and style
- Offer alternatives when asked`,
		},
		{
			ID:          "analyst",
			Name:        "Analyst",
			Description: "Structured analysis and summaries",
			Model:       "gpt-4.1",
			Temperature: temp(0.3),
			SystemPrompt: `You are a data and business analyst. You should:
- Analyze information methodically
- Present findings in structured formats
- Highlight key insights and actionable recommendations`,
		},
		{
			ID:          "tutor",
			Name:        "Tutor",
			Description: "Patient explanations for any level",
			Model:       "gpt-5-mini",
			SystemPrompt: `You are a patient and thorough tutor. Break complex topics into
simple parts, use analogies and examples, and adapt to the learner's level.`,
		},
	}
}

// PresetByID finds a preset in the given list
func PresetByID(presets []Preset, id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset overwrites the model and system prompt with the preset's,
// and the temperature only when the preset defines one.
func ApplyPreset(sel Selection, p Preset) Selection {
	sel.Model = p.Model
	if p.Temperature != nil {
		sel.Temperature = *p.Temperature
	}
	sel.SystemPrompt = p.SystemPrompt
	sel.PresetID = p.ID
	return sel
}

// ClearPreset detaches the selection from any preset. Model, temperature
// and system prompt keep their current values.
func ClearPreset(sel Selection) Selection {
	sel.PresetID = ""
	return sel
}
