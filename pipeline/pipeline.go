// Package pipeline runs a query through the full corrective QA flow:
// cache, translation, gating, conversation rewriting, hybrid retrieval,
// reranking, grounded generation, faithfulness verification and the
// web-search fallback.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/resilience-labs/climatechat/cache"
	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/conversation"
	"github.com/resilience-labs/climatechat/gating"
	"github.com/resilience-labs/climatechat/generate"
	"github.com/resilience-labs/climatechat/language"
	"github.com/resilience-labs/climatechat/metrics"
	"github.com/resilience-labs/climatechat/schema"
)

// Retriever runs the hybrid search.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]schema.Document, error)
}

// Reranker reorders candidates; it never fails the request.
type Reranker interface {
	Rerank(ctx context.Context, query string, in []schema.Document, topN int) []schema.Document
}

// Generator produces the grounded answer.
type Generator interface {
	Generate(ctx context.Context, query string, docs []schema.Document, history []schema.ConversationTurn) (generate.Output, error)
}

// Verifier scores answer faithfulness; failures report neutral.
type Verifier interface {
	Score(ctx context.Context, question, answer string, docs []schema.Document) float64
}

// WebSearcher is the fallback evidence source.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]schema.Document, error)
}

// Translator moves text between languages.
type Translator interface {
	Translate(ctx context.Context, text, fromCode, toCode string) (string, error)
}

// Rewriter screens and contextualizes follow-up queries.
type Rewriter interface {
	Process(ctx context.Context, query string, history []schema.ConversationTurn) conversation.Outcome
}

// Gate is the topic/safety gate.
type Gate interface {
	Evaluate(ctx context.Context, query string) gating.Decision
}

// Controller owns one configured pipeline.
type Controller struct {
	cache      cache.Store
	translator Translator
	rewriter   Rewriter
	gate       Gate
	retriever  Retriever
	reranker   Reranker
	generator  Generator
	verifier   Verifier
	websearch  WebSearcher
	opt        Options

	flight singleflight.Group
}

// Options tunes controller behavior.
type Options struct {
	CacheTTL time.Duration
	// FallbackThreshold: answers scoring below it trigger the
	// web-search fallback.
	FallbackThreshold float64
	RerankTopN        int
	// CoalesceRequests merges concurrent identical fresh queries into
	// one upstream execution.
	CoalesceRequests bool
}

// Deps wires the controller. Cache, websearch and reranker may be nil;
// the corresponding stages are skipped.
type Deps struct {
	Cache      cache.Store
	Translator Translator
	Rewriter   Rewriter
	Gate       Gate
	Retriever  Retriever
	Reranker   Reranker
	Generator  Generator
	Verifier   Verifier
	WebSearch  WebSearcher
}

func New(deps Deps, opt Options) *Controller {
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if opt.CacheTTL <= 0 {
		opt.CacheTTL = time.Hour
	}
	if opt.FallbackThreshold <= 0 {
		opt.FallbackThreshold = 0.1
	}
	if opt.RerankTopN <= 0 {
		opt.RerankTopN = 5
	}
	return &Controller{
		cache:      deps.Cache,
		translator: deps.Translator,
		rewriter:   deps.Rewriter,
		gate:       deps.Gate,
		retriever:  deps.Retriever,
		reranker:   deps.Reranker,
		generator:  deps.Generator,
		verifier:   deps.Verifier,
		websearch:  deps.WebSearch,
		opt:        opt,
	}
}

// Process answers query, asked in languageName, against history. The
// caller owns the history window and appends Result.Turn after each
// successful exchange.
func (c *Controller) Process(ctx context.Context, query, languageName string, history []schema.ConversationTurn) schema.Result {
	start := time.Now()
	timings := schema.StageTimings{}

	code, err := language.Resolve(languageName)
	if err != nil {
		return schema.Result{Reason: schema.ReasonUnsupportedLanguage, Message: err.Error(), Timings: timings}
	}
	// Every downstream stage works on the normalized form.
	query = strings.ToLower(strings.TrimSpace(query))

	// The cache key deliberately excludes conversation state: identical
	// normalized queries share one entry regardless of prior turns,
	// trading context sensitivity for hit rate.
	fresh := len(history) == 0
	key := cache.Key(code, query)
	if res, ok := c.cacheLookup(ctx, key, code, query, timings); ok {
		return res
	}
	// Coalescing is restricted to history-free queries; with history the
	// computation is not shared work.
	if fresh && c.opt.CoalesceRequests {
		v, _, _ := c.flight.Do(key, func() (any, error) {
			return c.process(ctx, query, code, key, nil, fresh, start, timings), nil
		})
		return v.(schema.Result)
	}
	return c.process(ctx, query, code, key, history, fresh, start, timings)
}

func (c *Controller) cacheLookup(ctx context.Context, key, code, query string, timings schema.StageTimings) (schema.Result, bool) {
	t := time.Now()
	entry, hit := c.cache.Get(ctx, key)
	timings["cache_lookup"] = time.Since(t)
	metrics.IncCacheLookup(hit)
	if !hit {
		return schema.Result{}, false
	}
	logger.Infof("pipeline: cache hit for %q", key)
	return schema.Result{
		Success:      true,
		Answer:       entry.Answer,
		Citations:    entry.Citations,
		Faithfulness: entry.Faithfulness,
		LanguageCode: code,
		CacheHit:     true,
		Timings:      timings,
		Turn: &schema.ConversationTurn{
			Query:        query,
			Answer:       entry.Answer,
			LanguageCode: code,
			Timestamp:    time.Now(),
		},
	}, true
}

func (c *Controller) process(ctx context.Context, query, code, key string, history []schema.ConversationTurn, fresh bool, start time.Time, timings schema.StageTimings) schema.Result {
	// Everything downstream runs in the pivot language.
	pivotQuery := query
	if code != language.PivotCode {
		t := time.Now()
		translated, err := c.translator.Translate(ctx, query, code, language.PivotCode)
		timings["translate_in"] = time.Since(t)
		if err != nil {
			return c.failure(err, schema.ReasonTranslationError, code, timings)
		}
		pivotQuery = translated
	}

	var docs []schema.Document
	if fresh {
		// The gate and the first retrieval pass are independent for a
		// fresh query; overlap them and discard retrieval on reject.
		var decision gating.Decision
		var gateDur, retrieveDur time.Duration
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			t := time.Now()
			decision = c.gate.Evaluate(gctx, pivotQuery)
			gateDur = time.Since(t)
			return nil
		})
		g.Go(func() error {
			t := time.Now()
			var err error
			docs, err = c.retriever.Retrieve(gctx, pivotQuery)
			retrieveDur = time.Since(t)
			return err
		})
		retrieveErr := g.Wait()
		timings["gate"] = gateDur
		timings["retrieve"] = retrieveDur
		metrics.IncGateVerdict(string(decision.Verdict), decision.Tier)
		if res, rejected := rejectionFor(decision, code, timings); rejected {
			return res
		}
		if retrieveErr != nil {
			return c.failure(retrieveErr, schema.ReasonInternalError, code, timings)
		}
	} else {
		// The gate sees the user's literal query before any rewrite: the
		// keyword tier must not be laundered away by the LLM, and a
		// keyword-rejectable follow-up must not cost a rewrite call.
		t := time.Now()
		decision := c.gate.Evaluate(ctx, pivotQuery)
		timings["gate"] = time.Since(t)
		metrics.IncGateVerdict(string(decision.Verdict), decision.Tier)
		if res, rejected := rejectionFor(decision, code, timings); rejected {
			return res
		}

		t = time.Now()
		outcome := c.rewriter.Process(ctx, pivotQuery, history)
		timings["rewrite"] = time.Since(t)
		switch outcome.Classification {
		case conversation.Harmful:
			metrics.IncRejection(string(schema.ReasonHarmfulContent))
			return rejection(schema.ReasonHarmfulContent, code, timings)
		case conversation.OffTopic:
			metrics.IncRejection(string(schema.ReasonOffTopic))
			return rejection(schema.ReasonOffTopic, code, timings)
		}
		pivotQuery = outcome.Rewritten

		t = time.Now()
		var err error
		docs, err = c.retriever.Retrieve(ctx, pivotQuery)
		timings["retrieve"] = time.Since(t)
		if err != nil {
			return c.failure(err, schema.ReasonInternalError, code, timings)
		}
	}
	metrics.ObserveRetrievedDocs(len(docs))

	answer, citations, score, err := c.answerFrom(ctx, pivotQuery, docs, history, timings)
	if errors.Is(err, generate.ErrNoEvidence) {
		metrics.IncRejection(string(schema.ReasonNoEvidence))
		return rejection(schema.ReasonNoEvidence, code, timings)
	}
	if err != nil {
		return c.failure(err, schema.ReasonGenerationError, code, timings)
	}

	// Corrective fallback: a barely-grounded answer gets one shot at
	// web evidence; the better-scoring answer wins.
	if score < c.opt.FallbackThreshold && c.websearch != nil {
		answer, citations, score = c.webFallback(ctx, pivotQuery, history, answer, citations, score, timings)
	}
	metrics.ObserveFaithfulness(score)

	finalAnswer := answer
	requiredTranslation := code != language.PivotCode
	if requiredTranslation {
		t := time.Now()
		translated, err := c.translator.Translate(ctx, answer, language.PivotCode, code)
		timings["translate_out"] = time.Since(t)
		if err != nil {
			// Serving the pivot-language answer beats failing the
			// whole request this late.
			logger.Warnf("pipeline: outbound translation failed, serving pivot answer: %v", err)
		} else {
			finalAnswer = translated
		}
	}

	c.cache.Set(ctx, key, &schema.CacheEntry{
		Answer:       finalAnswer,
		Citations:    citations,
		Faithfulness: score,
		Metadata: schema.CacheEntryMetadata{
			CachedAt:            time.Now(),
			LanguageCode:        code,
			ProcessingTime:      time.Since(start),
			RequiredTranslation: requiredTranslation,
		},
	}, c.opt.CacheTTL)

	for stage, d := range timings {
		metrics.ObserveStage(stage, d)
	}
	return schema.Result{
		Success:      true,
		Answer:       finalAnswer,
		Citations:    citations,
		Faithfulness: score,
		LanguageCode: code,
		Timings:      timings,
		Turn: &schema.ConversationTurn{
			Query:        query,
			Answer:       finalAnswer,
			LanguageCode: code,
			Timestamp:    time.Now(),
		},
	}
}

// answerFrom reranks, generates and verifies one evidence set.
func (c *Controller) answerFrom(ctx context.Context, query string, docs []schema.Document, history []schema.ConversationTurn, timings schema.StageTimings) (string, []schema.Citation, float64, error) {
	if c.reranker != nil && len(docs) > 0 {
		t := time.Now()
		docs = c.reranker.Rerank(ctx, query, docs, c.opt.RerankTopN)
		timings["rerank"] += time.Since(t)
	}

	t := time.Now()
	out, err := c.generator.Generate(ctx, query, docs, history)
	timings["generate"] += time.Since(t)
	if err != nil {
		return "", nil, 0, err
	}

	t = time.Now()
	score := c.verifier.Score(ctx, query, out.Answer, docs)
	timings["verify"] += time.Since(t)
	return out.Answer, out.Citations, score, nil
}

// webFallback tries to beat the primary answer with web evidence. Any
// failure keeps the primary; the higher score always wins.
func (c *Controller) webFallback(ctx context.Context, query string, history []schema.ConversationTurn, primary string, primaryCites []schema.Citation, primaryScore float64, timings schema.StageTimings) (string, []schema.Citation, float64) {
	t := time.Now()
	webDocs, err := c.websearch.Search(ctx, query)
	timings["web_search"] = time.Since(t)
	if err != nil || len(webDocs) == 0 {
		logger.Warnf("pipeline: web fallback unavailable, keeping primary answer: %v", err)
		metrics.IncFallback("failed")
		return primary, primaryCites, primaryScore
	}

	answer, cites, score, err := c.answerFrom(ctx, query, webDocs, history, timings)
	if err != nil || score <= primaryScore {
		metrics.IncFallback("kept_primary")
		return primary, primaryCites, primaryScore
	}
	logger.Infof("pipeline: web fallback improved faithfulness %.3f -> %.3f", primaryScore, score)
	metrics.IncFallback("improved")
	return answer, cites, score
}

// failure logs err and builds the user-facing result. Only template
// messages reach the caller; raw dependency errors stay in the logs.
func (c *Controller) failure(err error, reason schema.Reason, code string, timings schema.StageTimings) schema.Result {
	logger.Errorf("pipeline: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		reason = schema.ReasonTimeout
	}
	return schema.Result{Reason: reason, Message: MessageFor(reason), LanguageCode: code, Timings: timings}
}

// rejectionFor maps a gate decision to a Result, if it rejects.
func rejectionFor(d gating.Decision, code string, timings schema.StageTimings) (schema.Result, bool) {
	if d.Accepted() {
		return schema.Result{}, false
	}
	var reason schema.Reason
	switch d.Verdict {
	case gating.VerdictTooShort:
		reason = schema.ReasonTooShort
	case gating.VerdictTooLong:
		reason = schema.ReasonTooLong
	case gating.VerdictHarmful:
		reason = schema.ReasonHarmfulContent
	case gating.VerdictMisinformation:
		reason = schema.ReasonMisinformation
	default:
		reason = schema.ReasonNotClimateRelated
	}
	metrics.IncRejection(string(reason))
	return rejection(reason, code, timings), true
}

func rejection(reason schema.Reason, code string, timings schema.StageTimings) schema.Result {
	return schema.Result{
		Reason:       reason,
		Message:      MessageFor(reason),
		LanguageCode: code,
		Timings:      timings,
	}
}
