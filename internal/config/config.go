// Package config resolves docproof settings from the environment, a .env file,
// a YAML config file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"

	TokenizerTiktoken  = "tiktoken"
	TokenizerHeuristic = "heuristic"
)

// Settings is resolved once at startup and not changed afterwards.
type Settings struct {
	APIKey              string  `mapstructure:"api_key" yaml:"api_key"`
	Model               string  `mapstructure:"model" yaml:"model"`
	Temperature         float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokensPerRequest int     `mapstructure:"max_tokens_per_request" yaml:"max_tokens_per_request"`
	MaxRetryTimeSeconds int     `mapstructure:"max_retry_time_seconds" yaml:"max_retry_time_seconds"`
	InputPath           string  `mapstructure:"input_path" yaml:"input_path"`
	OutputPath          string  `mapstructure:"output_path" yaml:"output_path"`

	Provider         string `mapstructure:"provider" yaml:"provider"`
	BaseURL          string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	HTTPTimeoutSec   int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryBaseDelayMs int    `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int    `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
	Tokenizer        string `mapstructure:"tokenizer" yaml:"tokenizer"`
	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host"`
}

// setting describes one configuration key.
type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"api_key", "OPENAI_API_KEY", ""},
	{"model", "OPENAI_MODEL", "gpt-4o-mini"},
	{"temperature", "TEMPERATURE", 0.0},
	{"max_tokens_per_request", "MAX_TOKENS_PER_API_REQUEST", 4000},
	{"max_retry_time_seconds", "MAX_RETRY_TIME_SECONDS", 60},
	{"input_path", "INPUT_DOCX_PATH", "my_draft.docx"},
	{"output_path", "OUTPUT_DOCX_PATH", "proofread_output.docx"},
	{"provider", "DOCPROOF_PROVIDER", ProviderOpenAI},
	{"base_url", "OPENAI_BASE_URL", ""},
	{"http_timeout_sec", "DOCPROOF_HTTP_TIMEOUT_SEC", 60},
	{"retry_base_delay_ms", "DOCPROOF_RETRY_BASE_DELAY_MS", 1000},
	{"retry_max_delay_ms", "DOCPROOF_RETRY_MAX_DELAY_MS", 30000},
	{"tokenizer", "DOCPROOF_TOKENIZER", TokenizerTiktoken},
	{"ollama_host", "DOCPROOF_OLLAMA_HOST", "http://127.0.0.1:11434"},
}

// Keys lists configuration keys in display order.
func Keys() []string {
	out := make([]string, len(settings))
	for i, s := range settings {
		out[i] = s.key
	}
	return out
}

// EnvVar returns the environment variable bound to key, or "".
func EnvVar(key string) string {
	for _, s := range settings {
		if s.key == key {
			return s.env
		}
	}
	return ""
}

// DefaultPath is ~/.docproof/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".docproof", "config.yaml"), nil
}

// Load resolves settings using ".env" in the working directory.
func Load(cfgFile string) (*Settings, error) {
	return LoadFrom(cfgFile, ".env")
}

// LoadFrom resolves settings. Precedence: environment > dotenv file > YAML
// config file (cfgFile, or ~/.docproof/config.yaml) > defaults. Missing files
// are not an error; malformed ones are.
func LoadFrom(cfgFile, dotenvPath string) (*Settings, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", s.env, err)
		}
	}

	path := cfgFile
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		// optional read
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyDotenv(v, dotenvPath); err != nil {
		return nil, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	s.Tokenizer = strings.ToLower(strings.TrimSpace(s.Tokenizer))
	return &s, nil
}

// applyDotenv copies values from a dotenv file for variables that are not set
// in the real environment.
func applyDotenv(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	d := viper.New()
	d.SetConfigFile(path)
	d.SetConfigType("env")
	if err := d.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, s := range settings {
		if _, ok := os.LookupEnv(s.env); ok {
			continue
		}
		// viper lower-cases keys read from dotenv files.
		if name := strings.ToLower(s.env); d.IsSet(name) {
			v.Set(s.key, d.Get(name))
		}
	}
	return nil
}

// Save writes settings as YAML to cfgFile, or to ~/.docproof/config.yaml.
func Save(s *Settings, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set assigns a single key from its string form.
func (s *Settings) Set(key, value string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(value)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %q", key, value)
		}
		return i, nil
	}
	var err error
	switch key {
	case "api_key":
		s.APIKey = value
	case "model":
		s.Model = value
	case "temperature":
		var f float64
		if f, err = strconv.ParseFloat(value, 64); err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid temperature %q: must be a number in [0, 2]", value)
		}
		s.Temperature = f
	case "max_tokens_per_request":
		s.MaxTokensPerRequest, err = atoi()
	case "max_retry_time_seconds":
		s.MaxRetryTimeSeconds, err = atoi()
	case "input_path":
		s.InputPath = value
	case "output_path":
		s.OutputPath = value
	case "provider":
		v := strings.ToLower(value)
		if v != ProviderOpenAI && v != ProviderOpenRouter && v != ProviderOllama {
			return fmt.Errorf("invalid provider: %s (use openai, openrouter or ollama)", value)
		}
		s.Provider = v
	case "base_url":
		s.BaseURL = value
	case "http_timeout_sec":
		s.HTTPTimeoutSec, err = atoi()
	case "retry_base_delay_ms":
		s.RetryBaseDelayMs, err = atoi()
	case "retry_max_delay_ms":
		s.RetryMaxDelayMs, err = atoi()
	case "tokenizer":
		v := strings.ToLower(value)
		if v != TokenizerTiktoken && v != TokenizerHeuristic {
			return fmt.Errorf("invalid tokenizer: %s (use tiktoken or heuristic)", value)
		}
		s.Tokenizer = v
	case "ollama_host":
		s.OllamaHost = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

// Get returns the string form of key.
func (s *Settings) Get(key string) (string, bool) {
	switch key {
	case "api_key":
		return s.APIKey, true
	case "model":
		return s.Model, true
	case "temperature":
		return strconv.FormatFloat(s.Temperature, 'f', -1, 64), true
	case "max_tokens_per_request":
		return strconv.Itoa(s.MaxTokensPerRequest), true
	case "max_retry_time_seconds":
		return strconv.Itoa(s.MaxRetryTimeSeconds), true
	case "input_path":
		return s.InputPath, true
	case "output_path":
		return s.OutputPath, true
	case "provider":
		return s.Provider, true
	case "base_url":
		return s.BaseURL, true
	case "http_timeout_sec":
		return strconv.Itoa(s.HTTPTimeoutSec), true
	case "retry_base_delay_ms":
		return strconv.Itoa(s.RetryBaseDelayMs), true
	case "retry_max_delay_ms":
		return strconv.Itoa(s.RetryMaxDelayMs), true
	case "tokenizer":
		return s.Tokenizer, true
	case "ollama_host":
		return s.OllamaHost, true
	}
	return "", false
}

func (s *Settings) RetryBudget() time.Duration {
	return time.Duration(s.MaxRetryTimeSeconds) * time.Second
}

func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSec) * time.Second
}

func (s *Settings) RetryBaseDelay() time.Duration {
	return time.Duration(s.RetryBaseDelayMs) * time.Millisecond
}

func (s *Settings) RetryMaxDelay() time.Duration {
	return time.Duration(s.RetryMaxDelayMs) * time.Millisecond
}

// ExactTokenizer reports whether BPE token counting is enabled.
func (s *Settings) ExactTokenizer() bool { return s.Tokenizer != TokenizerHeuristic }
