package cli

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	for in, want := range map[string]string{
		"":                                   "****",
		"abc123":                             "****",
		"12345678":                           "****",
		"sk-1234567890abcdef":                "sk-1...cdef",
		"sk-proj-1234567890abcdefghijklmnop": "sk-p...mnop",
	} {
		assert.Equal(t, want, maskAPIKey(in), "mask(%q)", in)
	}
}

func TestParseChoice(t *testing.T) {
	// Five options, default 2.
	for in, want := range map[string]int{
		"":    2,
		"   ": 2,
		"abc": 2,
		"-1":  2,
		"0":   2,
		"6":   2,
		"1":   1,
		"3":   3,
		"5":   5,
	} {
		assert.Equal(t, want, parseChoice(in, 5, 2), "choice %q", in)
	}
}

func TestConfigCmd_AliasSettings(t *testing.T) {
	assert.Contains(t, configCmd.Aliases, "settings")
}

func TestConfigCmd_ListGroupsAndMasks(t *testing.T) {
	setupTestServices(t)
	require.NoError(t, settingsService.Set("llm.api_key", "sk-1234567890abcdef"))

	out, err := execute(t, "", "config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "[chunking]")
	assert.Contains(t, out, "chunking.size = 500")
	assert.Contains(t, out, "chunking.overlap = 50")
	assert.Contains(t, out, "answer.top_k = 10")
	assert.Contains(t, out, "llm.api_key = sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestConfigCmd_GetShowSecrets(t *testing.T) {
	setupTestServices(t)
	require.NoError(t, settingsService.Set("llm.api_key", "sk-1234567890abcdef"))

	out, err := execute(t, "", "config", "get", "llm.api_key", "--show-secrets")

	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890abcdef\n", out)
}

func TestConfigCmd_GetUnknownKey(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "config", "get", "nope.key")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigCmd_SetAndUnset(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "", "config", "set", "answer.top_k", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "answer.top_k = 4")
	assert.Equal(t, 4, env.config.GetInt("answer.top_k"))

	_, err = execute(t, "", "config", "unset", "answer.top_k")
	require.NoError(t, err)

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, settings.Answer.TopK)
}

func TestConfigCmd_SetRejectsInvalidWindow(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "config", "set", "chunking.overlap", "500")

	require.Error(t, err)
}

func TestConfigCmd_SetSecretFromInput(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "ghp_secretvalue123\n", "config", "set", "sources.github_token")

	require.NoError(t, err)
	assert.Equal(t, "ghp_secretvalue123", env.config.GetString("sources.github_token"))
	assert.NotContains(t, out, "ghp_secretvalue123")
}

func TestConfigCmd_SetNonSecretNeedsValue(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "config", "set", "answer.top_k")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigCmd_Path(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/ragapp/config.toml\n", out)
}

func TestConfigCmd_Wizard(t *testing.T) {
	env := setupTestServices(t)

	// Embedding: Ollama with default model and URL. LLM: Ollama, custom model.
	ollamaChoice := strconv.Itoa(providerIndex(domain.AllEmbeddingProviders(), domain.AIProviderOllama))
	llmChoice := strconv.Itoa(providerIndex(domain.AllLLMProviders(), domain.AIProviderOllama))
	input := strings.Join([]string{ollamaChoice, "", "", llmChoice, "llama3.1", ""}, "\n") + "\n"

	out, err := execute(t, input, "config", "wizard")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Complete!")
	assert.Equal(t, "ollama", env.config.GetString("embedding.provider"))
	assert.Equal(t, "ollama", env.config.GetString("llm.provider"))
	assert.Equal(t, "llama3.1", env.config.GetString("llm.model"))
}

func providerIndex(providers []domain.AIProvider, want domain.AIProvider) int {
	for i, p := range providers {
		if p == want {
			return i + 1
		}
	}
	return 1
}
