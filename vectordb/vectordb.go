// Package vectordb abstracts the hybrid (dense + sparse) document index.
package vectordb

import (
	"context"

	"github.com/resilience-labs/climatechat/schema"
)

// Index serves blended dense/sparse similarity queries.
type Index interface {
	// HybridQuery scores documents as sparse*(1-alpha) + dense*alpha and
	// returns the topK best, highest first. Callers validate alpha.
	HybridQuery(ctx context.Context, dense []float32, sparse schema.SparseVector, alpha float64, topK int) ([]schema.Document, error)
	Close() error
}
