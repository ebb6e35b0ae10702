package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/resilience-labs/climatechat/schema"
)

// MemoryIndex is a small in-process index for tests and local runs.
// It scores with the same blend the server-side ranker applies.
type MemoryIndex struct {
	mu   sync.RWMutex
	rows []memoryRow
}

type memoryRow struct {
	doc    schema.Document
	dense  []float32
	sparse schema.SparseVector
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add inserts a document with its vectors.
func (m *MemoryIndex) Add(doc schema.Document, dense []float32, sparse schema.SparseVector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, memoryRow{doc: doc, dense: dense, sparse: sparse})
}

func (m *MemoryIndex) HybridQuery(_ context.Context, dense []float32, sparse schema.SparseVector, alpha float64, topK int) ([]schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]schema.Document, 0, len(m.rows))
	for _, row := range m.rows {
		score := sparseDot(sparse, row.sparse)*(1-alpha) + cosine(dense, row.dense)*alpha
		doc := row.doc
		doc.Score = score
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if topK > 0 && len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

func (m *MemoryIndex) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sparseDot(a, b schema.SparseVector) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	weights := make(map[uint32]float32, len(a.Indices))
	for i, idx := range a.Indices {
		weights[idx] = a.Values[i]
	}
	var dot float64
	for i, idx := range b.Indices {
		if w, ok := weights[idx]; ok {
			dot += float64(w) * float64(b.Values[i])
		}
	}
	return dot
}
