package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"rising sea levels"}, req.Inputs)
		require.True(t, req.ReturnDense)
		require.True(t, req.ReturnSparse)

		json.NewEncoder(w).Encode(remoteResponse{
			Dense:  [][]float32{{0.1, 0.2, 0.3}},
			Sparse: []remoteSparse{{Indices: []uint32{7, 42}, Values: []float32{0.5, 0.8}}},
		})
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "", nil)
	dense, sparse, err := p.Embed(context.Background(), "rising sea levels")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, dense)
	assert.Equal(t, []uint32{7, 42}, sparse.Indices)
	assert.False(t, sparse.IsZero())
}

func TestRemoteProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "", nil)
	_, _, err := p.Embed(context.Background(), "q")
	require.Error(t, err)
}

func TestLexicalWeights(t *testing.T) {
	v := LexicalWeights("Carbon carbon DIOXIDE emissions, emissions!")
	require.False(t, v.IsZero())
	require.Len(t, v.Values, 3) // carbon, dioxide, emissions

	// Indices sorted ascending and normalized to unit length.
	var norm float64
	for i := 1; i < len(v.Indices); i++ {
		assert.Less(t, v.Indices[i-1], v.Indices[i])
	}
	for _, w := range v.Values {
		norm += float64(w) * float64(w)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestLexicalWeightsEmpty(t *testing.T) {
	assert.True(t, LexicalWeights("  ...  ").IsZero())
}
