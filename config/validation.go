package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, err.Field, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateGating()...)
	errs = append(errs, c.validateRerank()...)
	errs = append(errs, c.validateCache()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors
	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}
	return errs
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors
	switch strings.ToLower(c.Embedding.Provider) {
	case "remote":
		if c.Embedding.Endpoint == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.endpoint",
				Message: "embedding endpoint is required for the remote provider",
			})
		}
	case "openai":
		if c.Embedding.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.model",
				Message: "embedding model is required for the openai provider",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unknown embedding provider %q (want remote or openai)", c.Embedding.Provider),
		})
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}
	return errs
}

func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors
	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus":
		if c.VectorDB.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.address",
				Message: "vectordb address is required for the milvus provider",
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: "collection name is required for the milvus provider",
			})
		}
	case "memory":
	default:
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: fmt.Sprintf("unknown vectordb provider %q (want milvus or memory)", c.VectorDB.Provider),
		})
	}
	return errs
}

func (c *Config) validateRetrieval() ValidationErrors {
	var errs ValidationErrors
	if c.Retrieval.Alpha < 0 || c.Retrieval.Alpha > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.alpha",
			Message: fmt.Sprintf("retrieval.alpha must be in [0, 1], got %.2f", c.Retrieval.Alpha),
		})
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.top_k",
			Message: fmt.Sprintf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK),
		})
	}
	if c.Retrieval.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.top_k",
			Message: fmt.Sprintf("retrieval.top_k %d is too large (max recommended: 100)", c.Retrieval.TopK),
		})
	}
	return errs
}

func (c *Config) validateGating() ValidationErrors {
	var errs ValidationErrors
	if c.Gating.AcceptThreshold < 0 || c.Gating.AcceptThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "gating.accept_threshold",
			Message: fmt.Sprintf("accept_threshold must be in [0, 1], got %.2f", c.Gating.AcceptThreshold),
		})
	}
	if c.Gating.AmbiguousThreshold < 0 || c.Gating.AmbiguousThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "gating.ambiguous_threshold",
			Message: fmt.Sprintf("ambiguous_threshold must be in [0, 1], got %.2f", c.Gating.AmbiguousThreshold),
		})
	}
	if c.Gating.AmbiguousThreshold > c.Gating.AcceptThreshold {
		errs = append(errs, ValidationError{
			Field: "gating",
			Message: fmt.Sprintf("ambiguous_threshold (%.2f) must not exceed accept_threshold (%.2f)",
				c.Gating.AmbiguousThreshold, c.Gating.AcceptThreshold),
		})
	}
	if c.Gating.MinQueryChars >= c.Gating.MaxQueryChars {
		errs = append(errs, ValidationError{
			Field: "gating",
			Message: fmt.Sprintf("min_query_chars (%d) must be less than max_query_chars (%d)",
				c.Gating.MinQueryChars, c.Gating.MaxQueryChars),
		})
	}
	return errs
}

func (c *Config) validateRerank() ValidationErrors {
	var errs ValidationErrors
	if !c.Rerank.Enable {
		return errs
	}
	if c.Rerank.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "rerank.endpoint",
			Message: "rerank endpoint is required when rerank is enabled",
		})
	}
	if c.Rerank.TopN < 0 {
		errs = append(errs, ValidationError{
			Field:   "rerank.top_n",
			Message: fmt.Sprintf("rerank.top_n must be non-negative, got %d", c.Rerank.TopN),
		})
	}
	if c.Rerank.MaxCandidates < c.Rerank.TopN {
		errs = append(errs, ValidationError{
			Field: "rerank.max_candidates",
			Message: fmt.Sprintf("rerank.max_candidates (%d) must be at least top_n (%d)",
				c.Rerank.MaxCandidates, c.Rerank.TopN),
		})
	}
	return errs
}

func (c *Config) validateCache() ValidationErrors {
	var errs ValidationErrors
	switch strings.ToLower(c.Cache.Store) {
	case "redis":
		if c.Cache.Redis.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "cache.redis.address",
				Message: "redis address is required when cache.store is redis",
			})
		}
	case "memory", "none":
	default:
		errs = append(errs, ValidationError{
			Field:   "cache.store",
			Message: fmt.Sprintf("unknown cache store %q (want redis, memory or none)", c.Cache.Store),
		})
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_seconds",
			Message: fmt.Sprintf("cache.ttl_seconds must be non-negative, got %d", c.Cache.TTLSeconds),
		})
	}
	return errs
}
