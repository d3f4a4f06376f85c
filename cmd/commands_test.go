package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/KaramelBytes/docproof-cli/internal/parser"
)

func TestSampleCommand(t *testing.T) {
	dir := setupCLI(t, scenarioRuntime())
	p := filepath.Join(dir, "drafts", "my_draft.docx")

	out, err := execute(t, "sample", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Sample document")

	paras, err := parser.ParseParagraphs(p)
	require.NoError(t, err)
	require.Len(t, paras, 1+len(sampleParagraphs))
	assert.Equal(t, sampleTitle, paras[0])
	assert.Equal(t, sampleParagraphs, paras[1:])

	_, err = execute(t, "sample", p)
	assert.Error(t, err, "refuses to overwrite without --force")
	_, err = execute(t, "sample", p, "--force")
	assert.NoError(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	dir := setupCLI(t, scenarioRuntime())
	cfgPath := filepath.Join(dir, "config.yaml")

	_, err := execute(t, "--config", cfgPath, "config", "set", "model", "gpt-4.1-mini")
	require.NoError(t, err)
	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "model: gpt-4.1-mini")
	assert.NotContains(t, string(raw), "sk-test-123456", "environment secrets are not persisted")

	out, err := execute(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "model: gpt-4.1-mini")
	assert.Contains(t, out, "api_key: sk-****456")

	_, err = execute(t, "--config", cfgPath, "config", "set", "temperature", "9")
	assert.Error(t, err)
}

func TestModelsCommand(t *testing.T) {
	setupCLI(t, scenarioRuntime())
	out, err := execute(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "CONTEXT")
}

func TestBuildRuntime(t *testing.T) {
	s := &cfgpkg.Settings{APIKey: "k", HTTPTimeoutSec: 5}

	s.Provider = "openai"
	rt, name, err := buildRuntime(s)
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOpenAI, name)
	assert.IsType(t, &ai.Client{}, rt)

	s.Provider = "local"
	rt, name, err = buildRuntime(s)
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOllama, name)
	assert.IsType(t, &ai.OllamaClient{}, rt)

	s.Provider = "acme"
	_, _, err = buildRuntime(s)
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "******", mask("abc"))
	assert.Equal(t, "sk-****xyz", mask("sk-abcdefxyz"))
}
