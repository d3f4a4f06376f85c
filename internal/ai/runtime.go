package ai

import "context"

// Runtime is a minimal interface implemented by completion backends such as
// OpenAI, OpenRouter and local runtimes (e.g., Ollama).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderLocal      = "local"
)

// NormalizeProvider maps aliases onto a registered provider name.
func NormalizeProvider(name string) string {
	switch name {
	case "", "OpenAI", "OPENAI":
		return ProviderOpenAI
	case ProviderLocal, "Ollama", "OLLAMA":
		return ProviderOllama
	case "OpenRouter", "OPENROUTER":
		return ProviderOpenRouter
	}
	return name
}
