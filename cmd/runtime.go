package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
)

// newRuntime is swapped out by tests.
var newRuntime = buildRuntime

func buildRuntime(s *cfgpkg.Settings) (ai.Runtime, string, error) {
	providerName := ai.NormalizeProvider(strings.ToLower(strings.TrimSpace(s.Provider)))

	rc := ai.RuntimeConfig{
		HTTPTimeout: s.HTTPTimeout(),
		APIKey:      s.APIKey,
		BaseURL:     strings.TrimSpace(s.BaseURL),
	}
	if providerName == ai.ProviderOllama {
		rc.Host = strings.TrimSpace(s.OllamaHost)
		if rc.Host == "" {
			rc.Host = ai.DefaultOllamaHost
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (available: %s)", providerName, strings.Join(ai.Providers(), ", "))
	}
	return client, providerName, nil
}
