package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("FARO_PORT", "9090")
	os.Setenv("FARO_DEBUG", "true")
	os.Setenv("FARO_DOCS_ROOT", "/srv/docs")
	os.Setenv("FARO_INDEX_ROOT", "/srv/index")
	os.Setenv("FARO_COLLECTION_BASE", "corp")
	os.Setenv("FARO_OPENAI_API_KEY", "sk-test")
	os.Setenv("FARO_OPENAI_BASE_URL", "http://localhost:1234/v1")
	os.Setenv("FARO_LLM_CONCURRENCY", "3")
	os.Setenv("FARO_LLM_ACQUIRE_TIMEOUT", "5s")
	defer func() {
		os.Unsetenv("FARO_PORT")
		os.Unsetenv("FARO_DEBUG")
		os.Unsetenv("FARO_DOCS_ROOT")
		os.Unsetenv("FARO_INDEX_ROOT")
		os.Unsetenv("FARO_COLLECTION_BASE")
		os.Unsetenv("FARO_OPENAI_API_KEY")
		os.Unsetenv("FARO_OPENAI_BASE_URL")
		os.Unsetenv("FARO_LLM_CONCURRENCY")
		os.Unsetenv("FARO_LLM_ACQUIRE_TIMEOUT")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/srv/docs", cfg.DocsRoot)
	assert.Equal(t, "/srv/index", cfg.IndexRoot)
	assert.Equal(t, "corp", cfg.CollectionBase)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "http://localhost:1234/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, 3, cfg.LLMConcurrency)
	assert.Equal(t, 5*time.Second, cfg.LLMAcquireTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "data", cfg.DocsRoot)
	assert.Equal(t, "storage/index", cfg.IndexRoot)
	assert.Equal(t, "docs", cfg.CollectionBase)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 512, cfg.CompletionMaxTokens)
	assert.Equal(t, 12000, cfg.ContextMaxChars)
	assert.Equal(t, "Aria", cfg.AssistantName)
	assert.Equal(t, 1, cfg.LLMConcurrency)
	assert.Equal(t, 30*time.Second, cfg.LLMAcquireTimeout)
	assert.Equal(t, 10*time.Second, cfg.LLMConnectTimeout)
	assert.Equal(t, 120*time.Second, cfg.LLMReadTimeout)
	assert.Equal(t, int64(26214400), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "development", cfg.Environment)
}

func TestHasOpenAI(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "sk-test"}
	assert.True(t, cfg.HasOpenAI())

	cfg.OpenAIAPIKey = ""
	assert.False(t, cfg.HasOpenAI())
}

func TestHasSentry(t *testing.T) {
	cfg := &Config{SentryDSN: "https://abc@sentry.example/1"}
	assert.True(t, cfg.HasSentry())

	cfg.SentryDSN = ""
	assert.False(t, cfg.HasSentry())
}
