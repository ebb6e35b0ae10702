// Package retrieval runs the hybrid dense+sparse search and normalizes
// what comes back into a clean, deduplicated evidence list.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/embedding"
	"github.com/resilience-labs/climatechat/schema"
	"github.com/resilience-labs/climatechat/vectordb"
)

// minContentChars drops near-empty chunks that survived ingestion.
const minContentChars = 10

// Engine embeds a query and searches the hybrid index.
type Engine struct {
	embedder embedding.Provider
	index    vectordb.Index
	alpha    float64
	topK     int
	retry    int
}

// Options tunes the engine. Alpha blends sparse and dense relevance:
// sparse*(1-alpha) + dense*alpha.
type Options struct {
	Alpha float64
	TopK  int
	Retry int
}

// NewEngine validates options up front. An alpha outside [0, 1] is a
// configuration bug and is rejected immediately rather than skewing
// every search.
func NewEngine(embedder embedding.Provider, index vectordb.Index, opt Options) (*Engine, error) {
	if opt.Alpha < 0 || opt.Alpha > 1 {
		return nil, fmt.Errorf("retrieval: alpha must be in [0, 1], got %v", opt.Alpha)
	}
	if opt.TopK <= 0 {
		opt.TopK = 15
	}
	if opt.Retry <= 0 {
		opt.Retry = 3
	}
	return &Engine{
		embedder: embedder,
		index:    index,
		alpha:    opt.Alpha,
		topK:     opt.TopK,
		retry:    opt.Retry,
	}, nil
}

// Retrieve returns up to TopK cleaned documents ordered by descending
// score. An empty result is a valid outcome, not an error.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]schema.Document, error) {
	dense, sparse, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	var docs []schema.Document
	for attempt := 1; ; attempt++ {
		docs, err = e.index.HybridQuery(ctx, dense, sparse, e.alpha, e.topK)
		if err == nil {
			break
		}
		if attempt >= e.retry || ctx.Err() != nil {
			return nil, fmt.Errorf("retrieval: hybrid query: %w", err)
		}
		logger.Warnf("retrieval: query attempt %d/%d failed: %v", attempt, e.retry, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}

	return Normalize(docs), nil
}

// Normalize cleans content, drops stub chunks, dedupes titles keeping
// the first (highest scored) occurrence, and sorts by score descending.
func Normalize(docs []schema.Document) []schema.Document {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })

	out := make([]schema.Document, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		doc.Content = CleanContent(doc.Content)
		if len(doc.Content) < minContentChars {
			continue
		}
		title := strings.TrimSpace(doc.Title)
		if title != "" {
			if seen[title] {
				continue
			}
			seen[title] = true
		}
		out = append(out, doc)
	}
	return out
}
