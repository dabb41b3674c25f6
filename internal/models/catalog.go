// Package models contains the model catalog, presets and chat message types
// shared by the gatewaychat packages.
package models

import "strings"

// Defaults applied when no settings record exists yet.
const (
	DefaultModel       = "gpt-5-nano"
	DefaultTemperature = 0.7

	// ProviderDefaultTemperature is the sampling temperature the gateway
	// assumes when the request carries none.
	ProviderDefaultTemperature = 1.0

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// AIModel describes one model reachable through the gateway
type AIModel struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Provider       string `json:"provider"`
	Category       string `json:"category"`
	SupportsVision bool   `json:"supportsVision,omitempty"`
}

var categories = []string{
	"OpenAI",
	"Anthropic",
	"Google",
	"xAI",
	"Meta",
	"DeepSeek",
	"Cohere",
}

func model(id, name, category string) AIModel {
	return AIModel{ID: id, Name: name, Provider: category, Category: category}
}

func visionModel(id, name, category string) AIModel {
	m := model(id, name, category)
	m.SupportsVision = true
	return m
}

var catalog = []AIModel{
	model("gpt-5", "GPT-5", "OpenAI"),
	model("gpt-5-mini", "GPT-5 Mini", "OpenAI"),
	model("gpt-5-nano", "GPT-5 Nano", "OpenAI"),
	model("gpt-5-chat-latest", "GPT-5 Chat Latest", "OpenAI"),
	model("gpt-4.1", "GPT-4.1", "OpenAI"),
	model("gpt-4.1-mini", "GPT-4.1 Mini", "OpenAI"),
	model("gpt-4.1-nano", "GPT-4.1 Nano", "OpenAI"),
	model("gpt-4.5-preview", "GPT-4.5 Preview", "OpenAI"),
	visionModel("gpt-4o", "GPT-4o", "OpenAI"),
	visionModel("gpt-4o-mini", "GPT-4o Mini", "OpenAI"),
	model("o1", "o1", "OpenAI"),
	model("o1-mini", "o1 Mini", "OpenAI"),
	model("o1-pro", "o1 Pro", "OpenAI"),
	model("o3", "o3", "OpenAI"),
	model("o3-mini", "o3 Mini", "OpenAI"),
	model("o4-mini", "o4 Mini", "OpenAI"),

	model("claude", "Claude", "Anthropic"),
	model("claude-sonnet-4", "Claude Sonnet 4", "Anthropic"),
	model("claude-3.7-sonnet", "Claude 3.7 Sonnet", "Anthropic"),

	model("google/gemini-2.5-flash", "Gemini 2.5 Flash", "Google"),

	model("x-ai/grok-2-1212", "Grok 2 (12/12)", "xAI"),
	visionModel("x-ai/grok-2-vision-1212", "Grok 2 Vision (12/12)", "xAI"),
	model("x-ai/grok-3", "Grok 3", "xAI"),
	model("x-ai/grok-3-beta", "Grok 3 Beta", "xAI"),
	model("x-ai/grok-3-mini", "Grok 3 Mini", "xAI"),
	model("x-ai/grok-3-mini-beta", "Grok 3 Mini Beta", "xAI"),
	model("x-ai/grok-4", "Grok 4", "xAI"),
	model("x-ai/grok-4-fast:free", "Grok 4 Fast (Free)", "xAI"),
	model("x-ai/grok-code-fast-1", "Grok Code Fast 1", "xAI"),
	visionModel("x-ai/grok-vision-beta", "Grok Vision Beta", "xAI"),

	model("meta-llama/llama-4-maverick", "Llama 4 Maverick", "Meta"),
	model("meta-llama/llama-3.3-70b-instruct", "Llama 3.3 70B Instruct", "Meta"),
	model("meta-llama/llama-3.1-8b-instruct", "Llama 3.1 8B Instruct", "Meta"),
	model("meta-llama/llama-guard-3-8b", "Llama Guard 3 8B", "Meta"),

	model("deepseek-chat", "DeepSeek Chat (V3.1)", "DeepSeek"),
	model("deepseek-reasoner", "DeepSeek Reasoner (R1)", "DeepSeek"),

	model("cohere/command", "Command", "Cohere"),
	model("cohere/command-a", "Command A", "Cohere"),
	model("cohere/command-r", "Command R", "Cohere"),
	model("cohere/command-r-03-2024", "Command R (03/2024)", "Cohere"),
	model("cohere/command-r-08-2024", "Command R (08/2024)", "Cohere"),
	model("cohere/command-r-plus", "Command R+", "Cohere"),
	model("cohere/command-r-plus-04-2024", "Command R+ (04/2024)", "Cohere"),
	model("cohere/command-r-plus-08-2024", "Command R+ (08/2024)", "Cohere"),
	model("cohere/command-r7b-12-2024", "Command R7B (12/2024)", "Cohere"),
}

// Categories returns the model categories in display order
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// AllModels returns a copy of the full catalog
func AllModels() []AIModel {
	out := make([]AIModel, len(catalog))
	copy(out, catalog)
	return out
}

// ModelByID looks up a model by its gateway identifier
func ModelByID(id string) (AIModel, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return AIModel{}, false
}

// ModelsByCategory returns the models of one category, in catalog order
func ModelsByCategory(category string) []AIModel {
	var out []AIModel
	for _, m := range catalog {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// DisplayName returns the human-readable label for a model id. Unknown ids
// are returned unchanged.
func DisplayName(id string) string {
	if m, ok := ModelByID(id); ok {
		return m.Name
	}
	return id
}

// SearchModels does a case-insensitive match on id, name and category
func SearchModels(query string) []AIModel {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return AllModels()
	}

	var out []AIModel
	for _, m := range catalog {
		if strings.Contains(strings.ToLower(m.ID), q) ||
			strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Category), q) {
			out = append(out, m)
		}
	}
	return out
}

// ValidTemperature reports whether t is inside the accepted sampling range
func ValidTemperature(t float64) bool {
	return t >= MinTemperature && t <= MaxTemperature
}
