// Package climatechat assembles the multilingual climate question
// answering pipeline from its configured providers and exposes a
// session-aware client on top of it.
package climatechat

import (
	"context"
	"fmt"
	"time"

	"github.com/resilience-labs/climatechat/cache"
	"github.com/resilience-labs/climatechat/common/httpx"
	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/config"
	"github.com/resilience-labs/climatechat/conversation"
	"github.com/resilience-labs/climatechat/embedding"
	"github.com/resilience-labs/climatechat/gating"
	"github.com/resilience-labs/climatechat/generate"
	"github.com/resilience-labs/climatechat/language"
	"github.com/resilience-labs/climatechat/llm"
	"github.com/resilience-labs/climatechat/pipeline"
	"github.com/resilience-labs/climatechat/post"
	"github.com/resilience-labs/climatechat/retrieval"
	"github.com/resilience-labs/climatechat/schema"
	"github.com/resilience-labs/climatechat/translate"
	"github.com/resilience-labs/climatechat/vectordb"
	"github.com/resilience-labs/climatechat/verify"
	"github.com/resilience-labs/climatechat/websearch"
)

// Client owns every provider behind the pipeline plus the session
// store. Build it once and share it; all methods are safe for
// concurrent use.
type Client struct {
	cfg        *config.Config
	store      cache.Store
	index      vectordb.Index
	sessions   SessionStore
	controller *pipeline.Controller
}

// NewClient wires a client from config. Connection-backed providers
// (vector index, redis) are dialed here so a misconfigured deployment
// fails at startup rather than on the first question.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.SetLevelName(cfg.Logging.Level)

	c := &Client{cfg: cfg}
	httpClient := httpClientFrom(cfg.HTTP, cfg.HTTP.Retry)

	llmProvider, err := newLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider failed, err: %w", err)
	}

	embedder, err := newEmbeddingProvider(cfg.Embedding, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}

	c.index, err = newVectorIndex(ctx, cfg.VectorDB)
	if err != nil {
		return nil, fmt.Errorf("create vector index failed, err: %w", err)
	}

	engine, err := retrieval.NewEngine(embedder, c.index, retrieval.Options{
		Alpha: cfg.Retrieval.Alpha,
		TopK:  cfg.Retrieval.TopK,
		Retry: cfg.Retrieval.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("create retrieval engine failed, err: %w", err)
	}

	var classifier gating.Classifier
	if cfg.Gating.Classifier.Endpoint != "" {
		classifier = gating.NewHTTPClassifier(cfg.Gating.Classifier.Endpoint, cfg.Gating.Classifier.APIKey,
			httpClientFrom(cfg.HTTP, cfg.Gating.Classifier.Retry))
	}
	var similarity gating.SimilarityScorer
	if cfg.Gating.Semantic {
		similarity = gating.NewEmbeddingSimilarity(embedder)
	}
	gate := gating.NewGate(classifier, similarity, gating.Options{
		MinQueryChars:      cfg.Gating.MinQueryChars,
		MaxQueryChars:      cfg.Gating.MaxQueryChars,
		AcceptThreshold:    cfg.Gating.AcceptThreshold,
		AmbiguousThreshold: cfg.Gating.AmbiguousThreshold,
	})

	var scorer verify.Scorer
	if cfg.Verify.Endpoint != "" {
		scorer = verify.NewHTTPScorer(cfg.Verify.Endpoint, cfg.Verify.APIKey, httpClient)
	}

	deps := pipeline.Deps{
		Translator: translate.New(llmProvider),
		Rewriter:   conversation.NewRewriter(llmProvider),
		Gate:       gate,
		Retriever:  engine,
		Generator:  generate.New(llmProvider),
		Verifier:   verify.NewGate(scorer, cfg.Verify.MaxContextWords),
	}

	if cfg.Rerank.Enable {
		rr := post.NewHTTPReranker(cfg.Rerank.Endpoint, cfg.Rerank.Model, cfg.Rerank.APIKey, httpClient)
		rr.MaxCandidates = cfg.Rerank.MaxCandidates
		deps.Reranker = rr
	}

	if cfg.WebSearch.Enable {
		deps.WebSearch = websearch.New(websearch.Options{
			Endpoint:      cfg.WebSearch.Endpoint,
			APIKey:        cfg.WebSearch.APIKey,
			MaxResults:    cfg.WebSearch.MaxResults,
			RatePerMinute: cfg.WebSearch.RatePerMinute,
			HTTP:          httpClient,
		})
	}

	c.store, err = newCacheStore(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache store failed, err: %w", err)
	}
	deps.Cache = c.store

	c.sessions, err = newSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("create session store failed, err: %w", err)
	}

	c.controller = pipeline.New(deps, pipeline.Options{
		CacheTTL:          time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		FallbackThreshold: cfg.Verify.FallbackThreshold,
		RerankTopN:        cfg.Rerank.TopN,
		CoalesceRequests:  cfg.Pipeline.CoalesceRequests,
	})
	return c, nil
}

// NewSession opens a fresh conversation and returns its id.
func (c *Client) NewSession(ctx context.Context) (string, error) {
	s, err := c.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// Ask answers one question. An empty sessionID runs the query stateless;
// otherwise the session's history feeds the pipeline and the exchange is
// appended to it on success. An unknown sessionID degrades to stateless.
func (c *Client) Ask(ctx context.Context, query, languageName, sessionID string) schema.Result {
	var history []schema.ConversationTurn
	if sessionID != "" {
		if sess, ok := c.sessions.Get(ctx, sessionID); ok {
			history = sess.Turns
		} else {
			logger.Warnf("client: session %s not found, answering without history", sessionID)
			sessionID = ""
		}
	}

	res := c.controller.Process(ctx, query, languageName, history)

	if res.Success && res.Turn != nil && sessionID != "" {
		if err := c.sessions.AppendTurn(ctx, sessionID, *res.Turn); err != nil {
			logger.Warnf("client: append turn to session %s failed: %v", sessionID, err)
		}
	}
	return res
}

// EndSession discards a conversation and its history.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.sessions.Delete(ctx, sessionID)
}

// Languages lists the supported language names.
func (c *Client) Languages() []string {
	return language.Names()
}

// Close releases the index, cache and session connections.
func (c *Client) Close() error {
	var first error
	for _, closer := range []func() error{c.index.Close, c.store.Close, c.sessions.Close} {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newLLMProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return llm.NewOpenAIProvider(llm.OpenAIOptions{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			CallTimeout: time.Duration(cfg.CallTimeoutSeconds) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func newEmbeddingProvider(cfg config.EmbeddingConfig, client *httpx.Client) (embedding.Provider, error) {
	switch cfg.Provider {
	case "remote":
		return embedding.NewRemoteProvider(cfg.Endpoint, cfg.APIKey, client), nil
	case "openai":
		return embedding.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func newVectorIndex(ctx context.Context, cfg config.VectorDBConfig) (vectordb.Index, error) {
	switch cfg.Provider {
	case "milvus":
		return vectordb.NewMilvusIndex(ctx, vectordb.MilvusOptions{
			Address:    cfg.Address,
			Username:   cfg.Username,
			Password:   cfg.Password,
			Database:   cfg.Database,
			Collection: cfg.Collection,
			Fields: vectordb.MilvusFields{
				Dense:    cfg.DenseField,
				Sparse:   cfg.SparseField,
				Title:    cfg.TitleField,
				Content:  cfg.ContentField,
				URL:      cfg.URLField,
				Keywords: cfg.KeywordsField,
			},
		})
	case "memory":
		return vectordb.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}

func newCacheStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Store {
	case "redis":
		return cache.NewRedisStore(ctx, cache.RedisOptions{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case "memory":
		return cache.NewMemoryStore(cfg.MaxEntries, ttl), nil
	case "none":
		return cache.Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache store: %s", cfg.Store)
	}
}

func newSessionStore(cfg config.SessionConfig) (SessionStore, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Store {
	case "redis":
		return NewRedisSessionStore(RedisSessionOptions{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      ttl,
			MaxTurns: cfg.MaxTurns,
		})
	case "inmemory":
		return NewMemSessionStore(ttl, cfg.MaxTurns), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

func httpClientFrom(cfg config.HTTPClientConfig, retry int) *httpx.Client {
	return httpx.New(httpx.Options{
		Timeout:            time.Duration(cfg.TimeoutMs) * time.Millisecond,
		Retry:              retry,
		BackoffMin:         time.Duration(cfg.BackoffMinMs) * time.Millisecond,
		BackoffMax:         time.Duration(cfg.BackoffMaxMs) * time.Millisecond,
		HostAllowlist:      cfg.HostAllowlist,
		MaxConsecutiveFail: cfg.MaxConsecutiveFailures,
		CircuitOpen:        time.Duration(cfg.CircuitOpenSeconds) * time.Second,
	})
}
