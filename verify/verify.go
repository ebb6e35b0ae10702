// Package verify scores how faithfully an answer sticks to its
// evidence.
package verify

import (
	"context"
	"strings"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// neutralScore is reported when the scorer cannot run. Neither good
// enough to look verified nor bad enough to trip the fallback path.
const neutralScore = 0.5

// defaultMaxContextWords bounds each context sent to the scorer; the
// grounding models truncate silently past their window, which skews
// scores worse than an explicit cut.
const defaultMaxContextWords = 450

// Scorer measures answer faithfulness against contexts in [0, 1]. The
// question rides along; grounding services weigh relevance with it.
type Scorer interface {
	Score(ctx context.Context, question, answer string, contexts []string) (float64, error)
}

// Gate wraps a Scorer with context preparation and failure semantics.
type Gate struct {
	scorer   Scorer
	maxWords int
}

func NewGate(scorer Scorer, maxContextWords int) *Gate {
	if maxContextWords <= 0 {
		maxContextWords = defaultMaxContextWords
	}
	return &Gate{scorer: scorer, maxWords: maxContextWords}
}

// Score returns the faithfulness of answer against docs. A scorer
// failure yields the neutral score: verification trouble must not block
// an otherwise healthy answer.
func (g *Gate) Score(ctx context.Context, question, answer string, docs []schema.Document) float64 {
	if g.scorer == nil {
		return neutralScore
	}
	contexts := Contexts(docs, g.maxWords)
	if len(contexts) == 0 {
		return neutralScore
	}
	score, err := g.scorer.Score(ctx, question, answer, contexts)
	if err != nil {
		logger.Warnf("verify: scorer failed, reporting neutral %.1f: %v", neutralScore, err)
		return neutralScore
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Contexts extracts non-empty document contents, each truncated to
// maxWords words.
func Contexts(docs []schema.Document, maxWords int) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if content == "" {
			continue
		}
		out = append(out, TruncateWords(content, maxWords))
	}
	return out
}

// TruncateWords keeps the first n whitespace-separated words of s.
func TruncateWords(s string, n int) string {
	if n <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
