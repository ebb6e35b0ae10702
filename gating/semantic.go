package gating

import (
	"context"
	"math"
	"sync"

	"github.com/resilience-labs/climatechat/embedding"
)

// topicExemplars anchor the climate topic in embedding space. A query's
// similarity is its best cosine against any exemplar.
var topicExemplars = []string{
	"What causes climate change and global warming?",
	"How do greenhouse gas emissions affect the planet?",
	"What are the impacts of rising sea levels and extreme weather?",
	"How can we reduce our carbon footprint?",
	"What does the scientific consensus say about climate change?",
}

// EmbeddingSimilarity scores queries against the topic exemplars using
// the pipeline's own embedder. Exemplar vectors are computed once on
// first use.
type EmbeddingSimilarity struct {
	embedder embedding.Provider

	mu      sync.Mutex
	vectors [][]float32
}

func NewEmbeddingSimilarity(embedder embedding.Provider) *EmbeddingSimilarity {
	return &EmbeddingSimilarity{embedder: embedder}
}

func (s *EmbeddingSimilarity) exemplarVectors(ctx context.Context) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors != nil {
		return s.vectors, nil
	}
	vectors := make([][]float32, 0, len(topicExemplars))
	for _, ex := range topicExemplars {
		dense, _, err := s.embedder.Embed(ctx, ex)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, dense)
	}
	s.vectors = vectors
	return vectors, nil
}

func (s *EmbeddingSimilarity) Similarity(ctx context.Context, query string) (float64, error) {
	vectors, err := s.exemplarVectors(ctx)
	if err != nil {
		return 0, err
	}
	dense, _, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return 0, err
	}
	best := -1.0
	for _, v := range vectors {
		if c := cosine(dense, v); c > best {
			best = c
		}
	}
	return best, nil
}

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
