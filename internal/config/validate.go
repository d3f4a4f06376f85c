package config

import "fmt"

// ConfigError is a setting that prevents the run from starting.
type ConfigError struct {
	Field string
	Msg   string
	Hint  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Msg)
}

// Validate checks settings that would otherwise fail mid-run.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderOpenRouter, ProviderOllama:
	default:
		return &ConfigError{Field: "provider", Msg: fmt.Sprintf("unknown provider %q", s.Provider),
			Hint: "use openai, openrouter or ollama (DOCPROOF_PROVIDER)"}
	}
	if s.APIKey == "" && s.Provider != ProviderOllama {
		return &ConfigError{Field: "api_key", Msg: "OPENAI_API_KEY is not set",
			Hint: "set OPENAI_API_KEY in your environment or in a .env file"}
	}
	if s.Model == "" {
		return &ConfigError{Field: "model", Msg: "model is empty", Hint: "set OPENAI_MODEL, e.g. gpt-4o-mini"}
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return &ConfigError{Field: "temperature", Msg: fmt.Sprintf("%v is outside [0, 2]", s.Temperature),
			Hint: "use 0.0 for deterministic output"}
	}
	positive := []struct {
		field string
		val   int
	}{
		{"max_tokens_per_request", s.MaxTokensPerRequest},
		{"max_retry_time_seconds", s.MaxRetryTimeSeconds},
		{"http_timeout_sec", s.HTTPTimeoutSec},
		{"retry_base_delay_ms", s.RetryBaseDelayMs},
		{"retry_max_delay_ms", s.RetryMaxDelayMs},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return &ConfigError{Field: p.field, Msg: fmt.Sprintf("must be positive, got %d", p.val),
				Hint: fmt.Sprintf("set %s to a positive number", EnvVar(p.field))}
		}
	}
	if s.InputPath == "" {
		return &ConfigError{Field: "input_path", Msg: "input path is empty", Hint: "set INPUT_DOCX_PATH"}
	}
	if s.OutputPath == "" {
		return &ConfigError{Field: "output_path", Msg: "output path is empty", Hint: "set OUTPUT_DOCX_PATH"}
	}
	switch s.Tokenizer {
	case TokenizerTiktoken, TokenizerHeuristic:
	default:
		return &ConfigError{Field: "tokenizer", Msg: fmt.Sprintf("unknown tokenizer %q", s.Tokenizer),
			Hint: "use tiktoken or heuristic"}
	}
	return nil
}
