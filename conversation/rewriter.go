// Package conversation resolves follow-up questions against chat
// history and screens them before the retrieval pipeline runs.
package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/llm"
	"github.com/resilience-labs/climatechat/schema"
)

// Classification is the screening label for a query in context.
type Classification string

const (
	OnTopic  Classification = "on-topic"
	OffTopic Classification = "off-topic"
	Harmful  Classification = "harmful"
)

// Outcome is the result of processing a query against its history.
type Outcome struct {
	Classification Classification
	// Rewritten is the standalone query, populated only for on-topic
	// outcomes.
	Rewritten string
}

const classifySystem = `You screen questions for a climate change assistant. Given the conversation history and the latest question, classify the question.

Labels:
- on-topic: about climate change, climate science, environment, energy, emissions, weather patterns, sustainability, or a follow-up to such a discussion.
- off-topic: unrelated to climate or the environment.
- harmful: asks for dangerous, destructive or unethical actions, or pushes climate misinformation.

Respond with exactly one line in this format:
Classification: <on-topic|off-topic|harmful>`

const rewriteSystem = `You rewrite conversational questions into standalone search queries in English.

Rules:
- Resolve pronouns and references ("it", "there", "that") using the conversation history.
- Keep the user's intent exactly; add nothing new.
- Always output English regardless of input language.
- Output only the rewritten question.`

// classificationMarker extracts the label line from the model output.
var classificationMarker = regexp.MustCompile(`(?i)classification:\s*(on-topic|off-topic|harmful)`)

// Rewriter classifies a query in its conversational context and, when
// it passes, rewrites it into a standalone pivot-language query.
type Rewriter struct {
	provider llm.Provider
}

func NewRewriter(provider llm.Provider) *Rewriter {
	return &Rewriter{provider: provider}
}

// Process screens and rewrites. Classification fails closed: when the
// model is unreachable or its output is unparseable the query is
// treated as off-topic, since an unscreened query must not reach
// generation. Rejected queries never trigger a rewrite call.
func (r *Rewriter) Process(ctx context.Context, query string, history []schema.ConversationTurn) Outcome {
	label := r.classify(ctx, query, history)
	if label != OnTopic {
		return Outcome{Classification: label}
	}
	return Outcome{Classification: OnTopic, Rewritten: r.rewrite(ctx, query, history)}
}

func (r *Rewriter) classify(ctx context.Context, query string, history []schema.ConversationTurn) Classification {
	user := buildContextBlock(query, history)
	out, err := r.provider.GenerateWithSystem(ctx, classifySystem, user)
	if err != nil {
		logger.Warnf("conversation: classification call failed, treating as off-topic: %v", err)
		return OffTopic
	}
	m := classificationMarker.FindStringSubmatch(out)
	if m == nil {
		logger.Warnf("conversation: no classification marker in %q, treating as off-topic", firstLine(out))
		return OffTopic
	}
	switch strings.ToLower(m[1]) {
	case "on-topic":
		return OnTopic
	case "harmful":
		return Harmful
	default:
		return OffTopic
	}
}

// rewrite returns the standalone query, falling back to the original
// text when the rewrite call fails. A degraded query still retrieves
// something; a hard failure here would retrieve nothing.
func (r *Rewriter) rewrite(ctx context.Context, query string, history []schema.ConversationTurn) string {
	if len(history) == 0 {
		return query
	}
	user := buildContextBlock(query, history)
	out, err := r.provider.GenerateWithSystem(ctx, rewriteSystem, user)
	if err != nil {
		logger.Warnf("conversation: rewrite call failed, using original query: %v", err)
		return query
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return query
	}
	return out
}

func buildContextBlock(query string, history []schema.ConversationTurn) string {
	var b strings.Builder
	if block := llm.BuildHistoryBlock(history); block != "" {
		b.WriteString("Conversation history:\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Latest question: %s", query)
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
