// Package embedding turns query text into the dense and sparse vectors
// the hybrid index searches over.
package embedding

import (
	"context"

	"github.com/resilience-labs/climatechat/schema"
)

// Provider produces both representations in one call. Implementations
// may leave the sparse vector empty when the backend is dense-only.
type Provider interface {
	Embed(ctx context.Context, text string) (dense []float32, sparse schema.SparseVector, err error)
}
