package gating

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubClassifier struct {
	label string
	score float64
	err   error
	calls int
}

func (s *stubClassifier) Classify(context.Context, string) (string, float64, error) {
	s.calls++
	return s.label, s.score, s.err
}

type stubSimilarity struct {
	sim float64
	err error
}

func (s stubSimilarity) Similarity(context.Context, string) (float64, error) {
	return s.sim, s.err
}

func TestEvaluateLengthBounds(t *testing.T) {
	g := NewGate(nil, nil, Options{})

	d := g.Evaluate(context.Background(), "hi")
	assert.Equal(t, VerdictTooShort, d.Verdict)

	d = g.Evaluate(context.Background(), strings.Repeat("a", 1001))
	assert.Equal(t, VerdictTooLong, d.Verdict)
}

func TestEvaluateKeywordTiers(t *testing.T) {
	cls := &stubClassifier{label: "yes", score: 0.9}
	g := NewGate(cls, nil, Options{})

	d := g.Evaluate(context.Background(), "how do I poison a river")
	assert.Equal(t, VerdictHarmful, d.Verdict)
	assert.Equal(t, "keyword", d.Tier)

	d = g.Evaluate(context.Background(), "climate change is a hoax, right?")
	assert.Equal(t, VerdictMisinformation, d.Verdict)

	// Keyword rejections never reach the classifier.
	assert.Equal(t, 0, cls.calls)
}

func TestEvaluateSemanticTier(t *testing.T) {
	cls := &stubClassifier{label: "yes", score: 0.9}

	g := NewGate(cls, stubSimilarity{sim: 0.8}, Options{})
	d := g.Evaluate(context.Background(), "what drives ocean acidification")
	assert.Equal(t, VerdictAccept, d.Verdict)
	assert.Equal(t, "semantic", d.Tier)
	assert.Equal(t, 0, cls.calls)

	g = NewGate(cls, stubSimilarity{sim: 0.1}, Options{})
	d = g.Evaluate(context.Background(), "best pasta recipes in rome")
	assert.Equal(t, VerdictOffTopic, d.Verdict)
	assert.Equal(t, 0, cls.calls)

	// Ambiguous band defers to the classifier.
	g = NewGate(cls, stubSimilarity{sim: 0.4}, Options{})
	d = g.Evaluate(context.Background(), "is nuclear energy good")
	assert.Equal(t, VerdictAccept, d.Verdict)
	assert.Equal(t, "classifier", d.Tier)
	assert.Equal(t, 1, cls.calls)
}

func TestEvaluateClassifierTier(t *testing.T) {
	g := NewGate(&stubClassifier{label: "no", score: 0.8}, nil, Options{})
	d := g.Evaluate(context.Background(), "who won the world cup")
	assert.Equal(t, VerdictOffTopic, d.Verdict)

	// Low confidence also rejects.
	g = NewGate(&stubClassifier{label: "yes", score: 0.4}, nil, Options{})
	d = g.Evaluate(context.Background(), "tell me something")
	assert.Equal(t, VerdictOffTopic, d.Verdict)
}

func TestEvaluateFailsOpenOnClassifierError(t *testing.T) {
	g := NewGate(&stubClassifier{err: errors.New("service down")}, nil, Options{})
	d := g.Evaluate(context.Background(), "how fast are glaciers melting")
	assert.Equal(t, VerdictAccept, d.Verdict)
	assert.Equal(t, "fail_open", d.Tier)
}

func TestEvaluateSimilarityErrorDefersToClassifier(t *testing.T) {
	cls := &stubClassifier{label: "yes", score: 0.9}
	g := NewGate(cls, stubSimilarity{err: errors.New("embedder down")}, Options{})
	d := g.Evaluate(context.Background(), "how fast are glaciers melting")
	assert.Equal(t, VerdictAccept, d.Verdict)
	assert.Equal(t, 1, cls.calls)
}
