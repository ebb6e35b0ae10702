package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilience-labs/climatechat/schema"
)

func seedIndex() *MemoryIndex {
	idx := NewMemoryIndex()
	// "dense" favors doc A, "sparse" favors doc B.
	idx.Add(schema.Document{Title: "A", Content: "dense favorite"},
		[]float32{1, 0}, schema.SparseVector{Indices: []uint32{1}, Values: []float32{0.1}})
	idx.Add(schema.Document{Title: "B", Content: "sparse favorite"},
		[]float32{0, 1}, schema.SparseVector{Indices: []uint32{1}, Values: []float32{0.9}})
	return idx
}

func TestHybridQueryAlphaBoundaries(t *testing.T) {
	ctx := context.Background()
	idx := seedIndex()
	qDense := []float32{1, 0}
	qSparse := schema.SparseVector{Indices: []uint32{1}, Values: []float32{1}}

	// alpha=1: dense only, A wins.
	docs, err := idx.HybridQuery(ctx, qDense, qSparse, 1, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "A", docs[0].Title)

	// alpha=0: sparse only, B wins.
	docs, err = idx.HybridQuery(ctx, qDense, qSparse, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "B", docs[0].Title)
}

func TestHybridQueryTopK(t *testing.T) {
	idx := seedIndex()
	docs, err := idx.HybridQuery(context.Background(), []float32{1, 0},
		schema.SparseVector{}, 0.5, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestHybridQueryScoresDescending(t *testing.T) {
	idx := seedIndex()
	docs, err := idx.HybridQuery(context.Background(), []float32{0.7, 0.3},
		schema.SparseVector{Indices: []uint32{1}, Values: []float32{1}}, 0.5, 10)
	require.NoError(t, err)
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score)
	}
}
