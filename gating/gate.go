// Package gating decides whether a query is a safe, on-topic climate
// question before any expensive pipeline work runs.
package gating

import (
	"context"
	"fmt"
	"strings"

	"github.com/resilience-labs/climatechat/common/logger"
)

// Verdict classifies the gate outcome.
type Verdict string

const (
	VerdictAccept         Verdict = "accept"
	VerdictTooShort       Verdict = "too_short"
	VerdictTooLong        Verdict = "too_long"
	VerdictHarmful        Verdict = "harmful"
	VerdictMisinformation Verdict = "misinformation"
	VerdictOffTopic       Verdict = "off_topic"
)

// Decision carries the verdict plus how it was reached.
type Decision struct {
	Verdict Verdict
	// Tier that decided: "length", "keyword", "semantic", "classifier",
	// or "fail_open".
	Tier   string
	Score  float64
	Reason string
}

// Accepted reports whether the query may proceed.
func (d Decision) Accepted() bool { return d.Verdict == VerdictAccept }

// Classifier is a zero-shot topic classification service.
type Classifier interface {
	Classify(ctx context.Context, query string) (label string, score float64, err error)
}

// SimilarityScorer measures how close a query sits to the climate topic
// exemplars in embedding space.
type SimilarityScorer interface {
	Similarity(ctx context.Context, query string) (float64, error)
}

// Gate runs the tiers in order of cost: length checks, keyword rules,
// optional embedding similarity, then the classifier service.
type Gate struct {
	classifier Classifier
	similarity SimilarityScorer
	opt        Options
}

type Options struct {
	MinQueryChars int
	MaxQueryChars int
	// Semantic tier thresholds: similarity >= Accept passes outright,
	// [Ambiguous, Accept) defers to the classifier, below Ambiguous
	// rejects.
	AcceptThreshold    float64
	AmbiguousThreshold float64
}

// NewGate builds a gate. similarity may be nil to skip the semantic
// tier; classifier may be nil, in which case unresolved queries pass
// (the gate fails open, the faithfulness check still backstops output).
func NewGate(classifier Classifier, similarity SimilarityScorer, opt Options) *Gate {
	if opt.MinQueryChars <= 0 {
		opt.MinQueryChars = 3
	}
	if opt.MaxQueryChars <= 0 {
		opt.MaxQueryChars = 1000
	}
	if opt.AcceptThreshold <= 0 {
		opt.AcceptThreshold = 0.5
	}
	if opt.AmbiguousThreshold <= 0 {
		opt.AmbiguousThreshold = 0.3
	}
	return &Gate{classifier: classifier, similarity: similarity, opt: opt}
}

// Evaluate runs the tiers against an already-normalized query.
func (g *Gate) Evaluate(ctx context.Context, query string) Decision {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < g.opt.MinQueryChars {
		return Decision{Verdict: VerdictTooShort, Tier: "length",
			Reason: fmt.Sprintf("query shorter than %d chars", g.opt.MinQueryChars)}
	}
	if len(trimmed) > g.opt.MaxQueryChars {
		return Decision{Verdict: VerdictTooLong, Tier: "length",
			Reason: fmt.Sprintf("query longer than %d chars", g.opt.MaxQueryChars)}
	}

	if pattern, ok := matchHarmful(trimmed); ok {
		return Decision{Verdict: VerdictHarmful, Tier: "keyword",
			Reason: "matched harmful pattern: " + pattern}
	}
	if pattern, ok := matchDenial(trimmed); ok {
		return Decision{Verdict: VerdictMisinformation, Tier: "keyword",
			Reason: "matched denial pattern: " + pattern}
	}

	if g.similarity != nil {
		sim, err := g.similarity.Similarity(ctx, trimmed)
		if err != nil {
			logger.Warnf("gating: similarity scorer failed, deferring to classifier: %v", err)
		} else {
			switch {
			case sim >= g.opt.AcceptThreshold:
				return Decision{Verdict: VerdictAccept, Tier: "semantic", Score: sim,
					Reason: fmt.Sprintf("similarity %.3f >= %.2f", sim, g.opt.AcceptThreshold)}
			case sim < g.opt.AmbiguousThreshold:
				return Decision{Verdict: VerdictOffTopic, Tier: "semantic", Score: sim,
					Reason: fmt.Sprintf("similarity %.3f < %.2f", sim, g.opt.AmbiguousThreshold)}
			}
			// Ambiguous band: fall through to the classifier.
		}
	}

	if g.classifier == nil {
		return Decision{Verdict: VerdictAccept, Tier: "fail_open", Reason: "no classifier configured"}
	}
	label, score, err := g.classifier.Classify(ctx, trimmed)
	if err != nil {
		// Fail open: an unavailable classifier must not take the
		// service down with it.
		logger.Warnf("gating: classifier failed, accepting query: %v", err)
		return Decision{Verdict: VerdictAccept, Tier: "fail_open", Reason: "classifier unavailable"}
	}
	if isOnTopicLabel(label) && score > 0.5 {
		return Decision{Verdict: VerdictAccept, Tier: "classifier", Score: score,
			Reason: fmt.Sprintf("label %q score %.3f", label, score)}
	}
	return Decision{Verdict: VerdictOffTopic, Tier: "classifier", Score: score,
		Reason: fmt.Sprintf("label %q score %.3f", label, score)}
}

func isOnTopicLabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes", "on-topic", "on_topic", "climate":
		return true
	}
	return false
}
