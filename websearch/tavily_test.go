package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tv-key", req.APIKey)
		assert.Equal(t, "sea level rise projections", req.Query)
		assert.Equal(t, 3, req.MaxResults)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "NASA sea level", "url": "https://sealevel.nasa.gov", "content": "Projections range from 0.3 to 1m by 2100.", "score": 0.91},
			},
		})
	}))
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL, APIKey: "tv-key", MaxResults: 3})
	docs, err := c.Search(context.Background(), "sea level rise projections")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "NASA sea level", docs[0].Title)
	assert.Equal(t, 0.91, docs[0].Score)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Options{Endpoint: srv.URL})
	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
}

func TestSearchHonorsContextCancellation(t *testing.T) {
	// Exhaust the burst so Wait must block, then cancel.
	c := New(Options{Endpoint: "http://unused.invalid", RatePerMinute: 1})
	c.limiter.AllowN(time.Now(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "q")
	require.Error(t, err)
}
