package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
llm:
  model: gpt-4o-mini
  temperature: 0.1
embedding:
  provider: remote
  endpoint: http://embedder:8080/embed
vectordb:
  provider: milvus
  address: milvus:19530
  collection: climate_docs
retrieval:
  alpha: 0.7
  top_k: 10
rerank:
  enable: true
  endpoint: http://reranker:8000/rerank
cache:
  redis:
    address: redis:6379
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Retrieval.Alpha)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, 3, cfg.Retrieval.Retry)
	assert.Equal(t, 5, cfg.Rerank.TopN)
	assert.Equal(t, 15, cfg.Rerank.MaxCandidates)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, "redis", cfg.Cache.Store)
	assert.Equal(t, 300, cfg.LLM.CallTimeoutSeconds)
	assert.Equal(t, 0.1, cfg.Verify.FallbackThreshold)
	assert.Equal(t, 450, cfg.Verify.MaxContextWords)
	assert.Equal(t, 3, cfg.Gating.MinQueryChars)
	assert.Equal(t, 1000, cfg.Gating.MaxQueryChars)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tv-secret")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "tv-secret", cfg.WebSearch.APIKey)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}

func TestValidateAlphaOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.Embedding.Endpoint = "http://embedder:8080/embed"
	cfg.VectorDB.Provider = "memory"
	cfg.Retrieval.Alpha = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval.alpha")
}

func TestValidateRerankRequiresEndpoint(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.Embedding.Endpoint = "http://embedder:8080/embed"
	cfg.VectorDB.Provider = "memory"
	cfg.Rerank.Enable = true
	cfg.Rerank.Endpoint = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rerank.endpoint")
}
