package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilience-labs/climatechat/schema"
)

func candidates(n int) []schema.Document {
	docs := make([]schema.Document, n)
	for i := range docs {
		docs[i] = schema.Document{
			Title:   string(rune('A' + i)),
			Content: "Evidence chunk about climate systems and feedback loops.",
			Score:   1 - float64(i)*0.05,
		}
	}
	return docs
}

func TestRerankReordersByRelevance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "why is the arctic warming faster", req.Query)
		assert.Len(t, req.Documents, 3)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.95},
				{"index": 0, "relevance_score": 0.40},
			},
		})
	}))
	defer srv.Close()

	rr := NewHTTPReranker(srv.URL, "bge-reranker-large", "", nil)
	out := rr.Rerank(context.Background(), "why is the arctic warming faster", candidates(3), 5)

	require.Len(t, out, 2)
	assert.Equal(t, "C", out[0].Title)
	assert.Equal(t, 0.95, out[0].Score)
	assert.Equal(t, "A", out[1].Title)
}

func TestRerankDegradesOnServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rr := NewHTTPReranker(srv.URL, "", "", nil)
	in := candidates(8)
	out := rr.Rerank(context.Background(), "q", in, 5)

	// Original order, truncated to topN.
	require.Len(t, out, 5)
	for i := range out {
		assert.Equal(t, in[i].Title, out[i].Title)
	}
}

func TestRerankDegradesOnBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	rr := NewHTTPReranker(srv.URL, "", "", nil)
	out := rr.Rerank(context.Background(), "q", candidates(3), 2)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
}

func TestRerankCapsCandidates(t *testing.T) {
	var sent int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = len(req.Documents)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 0, "relevance_score": 0.9}},
		})
	}))
	defer srv.Close()

	rr := NewHTTPReranker(srv.URL, "", "", nil)
	rr.Rerank(context.Background(), "q", candidates(20), 5)
	assert.Equal(t, defaultMaxCandidates, sent)
}

func TestNopRerankerTruncates(t *testing.T) {
	out := NopReranker{}.Rerank(context.Background(), "q", candidates(9), 0)
	assert.Len(t, out, defaultTopN)
}
