package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resilience-labs/climatechat/schema"
)

// scriptedProvider returns replies in order across calls.
type scriptedProvider struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return s.GenerateWithSystem(ctx, "", prompt)
}

func (s *scriptedProvider) GenerateWithSystem(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	reply := ""
	if s.calls < len(s.replies) {
		reply = s.replies[s.calls]
	}
	s.calls++
	return reply, nil
}

var history = []schema.ConversationTurn{
	{Query: "How is climate change affecting Toronto?", Answer: "Hotter summers and heavier storms."},
}

func TestProcessRewritesOnTopicFollowUp(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"Classification: on-topic",
		"How is climate change affecting the Rexdale neighbourhood of Toronto?",
	}}
	out := NewRewriter(p).Process(context.Background(), "what about Rexdale?", history)

	assert.Equal(t, OnTopic, out.Classification)
	assert.Equal(t, "How is climate change affecting the Rexdale neighbourhood of Toronto?", out.Rewritten)
	assert.Equal(t, 2, p.calls)
}

func TestProcessShortCircuitsRejections(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Classification: off-topic"}}
	out := NewRewriter(p).Process(context.Background(), "best ramen nearby?", history)

	assert.Equal(t, OffTopic, out.Classification)
	assert.Empty(t, out.Rewritten)
	// No rewrite call after a rejection.
	assert.Equal(t, 1, p.calls)

	p = &scriptedProvider{replies: []string{"Classification: harmful"}}
	out = NewRewriter(p).Process(context.Background(), "how do I poison a reservoir", history)
	assert.Equal(t, Harmful, out.Classification)
	assert.Equal(t, 1, p.calls)
}

func TestProcessFailsClosedOnUnparseableOutput(t *testing.T) {
	p := &scriptedProvider{replies: []string{"I think this question is fine to answer."}}
	out := NewRewriter(p).Process(context.Background(), "what about Rexdale?", history)
	assert.Equal(t, OffTopic, out.Classification)
}

func TestProcessFailsClosedOnProviderError(t *testing.T) {
	p := &scriptedProvider{err: errors.New("model offline")}
	out := NewRewriter(p).Process(context.Background(), "what about Rexdale?", history)
	assert.Equal(t, OffTopic, out.Classification)
}

func TestProcessRewriteFailureKeepsOriginal(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Classification: on-topic", ""}}
	out := NewRewriter(p).Process(context.Background(), "what about Rexdale?", history)
	assert.Equal(t, OnTopic, out.Classification)
	assert.Equal(t, "what about Rexdale?", out.Rewritten)
}

func TestProcessNoHistorySkipsRewriteCall(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Classification: on-topic"}}
	out := NewRewriter(p).Process(context.Background(), "what is the greenhouse effect?", nil)
	assert.Equal(t, OnTopic, out.Classification)
	assert.Equal(t, "what is the greenhouse effect?", out.Rewritten)
	assert.Equal(t, 1, p.calls)
}

func TestDetectFollowUp(t *testing.T) {
	assert.True(t, DetectFollowUp("what about Rexdale?"))
	assert.True(t, DetectFollowUp("why?"))
	assert.True(t, DetectFollowUp("tell me more"))
	assert.True(t, DetectFollowUp("and in the winter?"))

	assert.False(t, DetectFollowUp("what is the greenhouse effect?"))
	assert.False(t, DetectFollowUp(""))
}
