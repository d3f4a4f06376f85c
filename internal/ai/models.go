package ai

import "strings"

// Model metadata and simple pricing helpers for budget warnings and the
// end-of-run cost estimate. Prices are illustrative; check the provider's page.

type ModelInfo struct {
	Name          string  `json:"name"`
	ContextTokens int     `json:"context_tokens"` // approximate context window
	InputPerK     float64 `json:"input_per_k"`    // USD per 1K input tokens
	OutputPerK    float64 `json:"output_per_k"`   // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-4o": {
		Name:          "gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"gpt-4.1-mini": {
		Name:          "gpt-4.1-mini",
		ContextTokens: 1047576,
		InputPerK:     0.0004,
		OutputPerK:    0.0016,
	},
	"gpt-4.1": {
		Name:          "gpt-4.1",
		ContextTokens: 1047576,
		InputPerK:     0.002,
		OutputPerK:    0.008,
	},
	"gpt-3.5-turbo": {
		Name:          "gpt-3.5-turbo",
		ContextTokens: 16385,
		InputPerK:     0.0005,
		OutputPerK:    0.0015,
	},
	// Common local (Ollama) tags
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		ContextTokens: 8192,
	},
	"mistral:7b-instruct": {
		Name:          "mistral:7b-instruct",
		ContextTokens: 8192,
	},
	"phi3:mini-4k-instruct": {
		Name:          "phi3:mini-4k-instruct",
		ContextTokens: 4096,
	},
}

// LookupModel returns ModelInfo and ok flag. Router prefixes such as
// "openai/" are ignored when the full name is not in the catalog.
func LookupModel(name string) (ModelInfo, bool) {
	if mi, ok := models[name]; ok {
		return mi, true
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		mi, ok := models[name[i+1:]]
		return mi, ok
	}
	return ModelInfo{}, false
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}
