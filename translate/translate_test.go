package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) GenerateCompletion(context.Context, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubProvider) GenerateWithSystem(context.Context, string, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestTranslateIdentity(t *testing.T) {
	p := &stubProvider{reply: "should not be used"}
	tr := New(p)

	out, err := tr.Translate(context.Background(), "bonjour", "fr", "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out)
	assert.Equal(t, 0, p.calls)

	out, err = tr.Translate(context.Background(), "   ", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "   ", out)
	assert.Equal(t, 0, p.calls)
}

func TestTranslateCallsProvider(t *testing.T) {
	p := &stubProvider{reply: "  hello  "}
	tr := New(p)

	out, err := tr.Translate(context.Background(), "bonjour", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, p.calls)
}

func TestTranslatePropagatesError(t *testing.T) {
	tr := New(&stubProvider{err: errors.New("model offline")})
	_, err := tr.Translate(context.Background(), "bonjour", "fr", "en")
	require.Error(t, err)
}
