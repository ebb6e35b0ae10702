// Package config defines the YAML configuration for the climate QA
// pipeline and loads it with environment overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Rerank    RerankConfig    `json:"rerank" yaml:"rerank"`
	Gating    GatingConfig    `json:"gating" yaml:"gating"`
	Verify    VerifyConfig    `json:"verify" yaml:"verify"`
	WebSearch WebSearchConfig `json:"web_search" yaml:"web_search"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	// HTTP holds global defaults for outbound calls (reranker, scorer,
	// classifier, web search).
	HTTP HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// LoggingConfig controls the log level ("debug", "info", "warn", "error").
type LoggingConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// LLMConfig defines configuration for the chat completion model used for
// generation, translation and conversation rewriting.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// CallTimeoutSeconds caps a single completion call. Default 300.
	CallTimeoutSeconds int `json:"call_timeout_seconds,omitempty" yaml:"call_timeout_seconds,omitempty"`
}

// EmbeddingConfig defines configuration for the dense+sparse embedder.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: remote, openai
	Endpoint   string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines configuration for the hybrid vector index.
type VectorDBConfig struct {
	Provider    string `json:"provider" yaml:"provider"` // Available options: milvus, memory
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Database    string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection  string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty"`
	DenseField  string `json:"dense_field,omitempty" yaml:"dense_field,omitempty"`
	SparseField string `json:"sparse_field,omitempty" yaml:"sparse_field,omitempty"`
	// Output fields mapped onto documents. KeywordsField is optional:
	// when set, its comma-separated value becomes the keyword tags.
	TitleField    string `json:"title_field,omitempty" yaml:"title_field,omitempty"`
	ContentField  string `json:"content_field,omitempty" yaml:"content_field,omitempty"`
	URLField      string `json:"url_field,omitempty" yaml:"url_field,omitempty"`
	KeywordsField string `json:"keywords_field,omitempty" yaml:"keywords_field,omitempty"`
}

// RetrievalConfig tunes the hybrid retrieval engine.
type RetrievalConfig struct {
	// Alpha blends sparse and dense scores: sparse*(1-alpha) + dense*alpha.
	// Must lie in [0, 1].
	Alpha float64 `json:"alpha" yaml:"alpha"`
	TopK  int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Retry int     `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RerankConfig configures the cross-encoder reranking service.
type RerankConfig struct {
	Enable        bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Endpoint      string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKey        string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	TopN          int    `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	MaxCandidates int    `json:"max_candidates,omitempty" yaml:"max_candidates,omitempty"`
}

// GatingConfig configures the tiered topic/safety gate.
type GatingConfig struct {
	// Semantic enables the embedding-similarity tier.
	Semantic           bool    `json:"semantic,omitempty" yaml:"semantic,omitempty"`
	AcceptThreshold    float64 `json:"accept_threshold,omitempty" yaml:"accept_threshold,omitempty"`
	AmbiguousThreshold float64 `json:"ambiguous_threshold,omitempty" yaml:"ambiguous_threshold,omitempty"`
	// Classifier is the zero-shot topic classifier service.
	Classifier struct {
		Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
		APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
		Retry    int    `json:"retry,omitempty" yaml:"retry,omitempty"`
	} `json:"classifier" yaml:"classifier"`
	MinQueryChars int `json:"min_query_chars,omitempty" yaml:"min_query_chars,omitempty"`
	MaxQueryChars int `json:"max_query_chars,omitempty" yaml:"max_query_chars,omitempty"`
}

// VerifyConfig configures the faithfulness scorer.
type VerifyConfig struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// FallbackThreshold triggers the web-search fallback when the primary
	// answer scores below it. Default 0.1.
	FallbackThreshold float64 `json:"fallback_threshold,omitempty" yaml:"fallback_threshold,omitempty"`
	MaxContextWords   int     `json:"max_context_words,omitempty" yaml:"max_context_words,omitempty"`
}

// WebSearchConfig configures the fallback web evidence source.
type WebSearchConfig struct {
	Enable        bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Endpoint      string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKey        string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	MaxResults    int    `json:"max_results,omitempty" yaml:"max_results,omitempty"`
	RatePerMinute int    `json:"rate_per_minute,omitempty" yaml:"rate_per_minute,omitempty"`
}

// CacheConfig controls the response cache.
// Store: "redis" (default when address set), "memory", or "none".
type CacheConfig struct {
	Store      string      `json:"store,omitempty" yaml:"store,omitempty"`
	TTLSeconds int         `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxEntries int         `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	Redis      RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig holds redis connection settings shared by cache and session.
type RedisConfig struct {
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// SessionConfig controls server-side conversation history.
// Store: "inmemory" (default) or "redis".
type SessionConfig struct {
	Store      string      `json:"store,omitempty" yaml:"store,omitempty"`
	TTLSeconds int         `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxTurns   int         `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
	Redis      RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// PipelineConfig holds controller-level switches.
type PipelineConfig struct {
	// CoalesceRequests merges concurrent identical queries into one
	// upstream execution. Off unless explicitly enabled.
	CoalesceRequests bool `json:"coalesce_requests,omitempty" yaml:"coalesce_requests,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Default returns a configuration with every tunable at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file, applies environment overrides for
// secrets, fills defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideEnv(&c.LLM.APIKey, "OPENAI_API_KEY")
	overrideEnv(&c.Embedding.APIKey, "EMBEDDING_API_KEY")
	overrideEnv(&c.Rerank.APIKey, "RERANK_API_KEY")
	overrideEnv(&c.Verify.APIKey, "VERIFY_API_KEY")
	overrideEnv(&c.WebSearch.APIKey, "TAVILY_API_KEY")
	overrideEnv(&c.VectorDB.Password, "VECTORDB_PASSWORD")
	overrideEnv(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	overrideEnv(&c.Session.Redis.Password, "REDIS_PASSWORD")
}

// overrideEnv fills dst from the environment only when the file left it
// empty, so explicit config wins.
func overrideEnv(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.CallTimeoutSeconds == 0 {
		c.LLM.CallTimeoutSeconds = 300
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "remote"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.VectorDB.Provider == "" {
		c.VectorDB.Provider = "milvus"
	}
	if c.VectorDB.DenseField == "" {
		c.VectorDB.DenseField = "dense_vector"
	}
	if c.VectorDB.SparseField == "" {
		c.VectorDB.SparseField = "sparse_vector"
	}
	if c.VectorDB.TitleField == "" {
		c.VectorDB.TitleField = "title"
	}
	if c.VectorDB.ContentField == "" {
		c.VectorDB.ContentField = "content"
	}
	if c.VectorDB.URLField == "" {
		c.VectorDB.URLField = "url"
	}
	if c.Retrieval.Alpha == 0 && c.Retrieval.TopK == 0 {
		// Untouched section: balanced blend.
		c.Retrieval.Alpha = 0.5
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 15
	}
	if c.Retrieval.Retry == 0 {
		c.Retrieval.Retry = 3
	}
	if c.Rerank.TopN == 0 {
		c.Rerank.TopN = 5
	}
	if c.Rerank.MaxCandidates == 0 {
		c.Rerank.MaxCandidates = 15
	}
	if c.Gating.AcceptThreshold == 0 {
		c.Gating.AcceptThreshold = 0.5
	}
	if c.Gating.AmbiguousThreshold == 0 {
		c.Gating.AmbiguousThreshold = 0.3
	}
	if c.Gating.Classifier.Retry == 0 {
		c.Gating.Classifier.Retry = 3
	}
	if c.Gating.MinQueryChars == 0 {
		c.Gating.MinQueryChars = 3
	}
	if c.Gating.MaxQueryChars == 0 {
		c.Gating.MaxQueryChars = 1000
	}
	if c.Verify.FallbackThreshold == 0 {
		c.Verify.FallbackThreshold = 0.1
	}
	if c.Verify.MaxContextWords == 0 {
		c.Verify.MaxContextWords = 450
	}
	if c.WebSearch.MaxResults == 0 {
		c.WebSearch.MaxResults = 5
	}
	if c.WebSearch.RatePerMinute == 0 {
		c.WebSearch.RatePerMinute = 60
	}
	if c.Cache.Store == "" {
		if c.Cache.Redis.Address != "" {
			c.Cache.Store = "redis"
		} else {
			c.Cache.Store = "memory"
		}
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 3600
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1024
	}
	if c.Session.Store == "" {
		c.Session.Store = "inmemory"
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = 3600
	}
	if c.Session.MaxTurns == 0 {
		c.Session.MaxTurns = 20
	}
	if c.HTTP.TimeoutMs == 0 {
		c.HTTP.TimeoutMs = 30000
	}
	if c.HTTP.Retry == 0 {
		c.HTTP.Retry = 1
	}
}
