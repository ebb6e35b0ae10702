package verify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilience-labs/climatechat/schema"
)

type stubScorer struct {
	score       float64
	err         error
	gotQuestion string
	got         []string
}

func (s *stubScorer) Score(_ context.Context, question, _ string, contexts []string) (float64, error) {
	s.gotQuestion = question
	s.got = contexts
	return s.score, s.err
}

func TestGateScore(t *testing.T) {
	s := &stubScorer{score: 0.92}
	g := NewGate(s, 0)
	score := g.Score(context.Background(), "the question", "answer",
		[]schema.Document{{Content: "evidence text"}})
	assert.Equal(t, 0.92, score)
	assert.Equal(t, "the question", s.gotQuestion)
}

func TestGateNeutralOnScorerFailure(t *testing.T) {
	g := NewGate(&stubScorer{err: errors.New("scorer down")}, 0)
	score := g.Score(context.Background(), "q", "answer",
		[]schema.Document{{Content: "evidence text"}})
	assert.Equal(t, 0.5, score)
}

func TestGateNeutralWithoutContexts(t *testing.T) {
	g := NewGate(&stubScorer{score: 0.9}, 0)
	assert.Equal(t, 0.5, g.Score(context.Background(), "q", "answer", nil))
	assert.Equal(t, 0.5, g.Score(context.Background(), "q", "answer",
		[]schema.Document{{Content: "   "}}))
}

func TestGateTruncatesContexts(t *testing.T) {
	s := &stubScorer{score: 0.8}
	g := NewGate(s, 450)
	long := strings.Repeat("word ", 600)
	g.Score(context.Background(), "q", "answer", []schema.Document{{Content: long}})

	require.Len(t, s.got, 1)
	assert.Len(t, strings.Fields(s.got[0]), 450)
}

func TestGateClampsScore(t *testing.T) {
	g := NewGate(&stubScorer{score: 1.4}, 0)
	assert.Equal(t, 1.0, g.Score(context.Background(), "q", "a",
		[]schema.Document{{Content: "evidence"}}))
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "a b c", TruncateWords("a b c", 5))
	assert.Equal(t, "a b", TruncateWords("a b c d", 2))
	assert.Equal(t, "a b c", TruncateWords("a b c", 0))
}

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "why is the arctic warming faster?", req.Question)
		assert.Equal(t, "the answer", req.Answer)
		assert.Len(t, req.Contexts, 2)
		json.NewEncoder(w).Encode(scoreResp{Score: 0.77})
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, "", nil)
	score, err := s.Score(context.Background(), "why is the arctic warming faster?", "the answer", []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Equal(t, 0.77, score)
}

func TestHTTPScorerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, "", nil)
	_, err := s.Score(context.Background(), "q", "a", []string{"c"})
	require.Error(t, err)
}
