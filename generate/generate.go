// Package generate produces the grounded answer and its citations.
package generate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/resilience-labs/climatechat/llm"
	"github.com/resilience-labs/climatechat/schema"
)

// ErrNoEvidence is returned when generation is attempted with no usable
// documents. The caller decides whether to fall back or apologize.
var ErrNoEvidence = errors.New("generate: no evidence documents")

// snippetLen is how much of a source is echoed into its citation.
const snippetLen = 200

// headingFix inserts the space markdown requires after heading hashes
// ("##Impact" -> "## Impact"); models drop it often enough to matter.
var headingFix = regexp.MustCompile(`(?m)^(#{1,6})([^\s#])`)

// Output is a generated answer with its supporting citations.
type Output struct {
	Answer    string
	Citations []schema.Citation
}

// Orchestrator turns evidence documents into an answer.
type Orchestrator struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Orchestrator {
	return &Orchestrator{provider: provider}
}

// Generate answers query from docs. Citations are derived from the
// input documents, not parsed from model output, so they always point
// at real sources.
func (o *Orchestrator) Generate(ctx context.Context, query string, docs []schema.Document, history []schema.ConversationTurn) (Output, error) {
	usable := make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) != "" {
			usable = append(usable, doc)
		}
	}
	if len(usable) == 0 {
		return Output{}, ErrNoEvidence
	}

	prompt := llm.BuildGroundingPrompt(query, usable, history)
	answer, err := o.provider.GenerateWithSystem(ctx, llm.ClimateSystemMessage, prompt)
	if err != nil {
		return Output{}, fmt.Errorf("generate: %w", err)
	}
	answer = NormalizeHeadings(strings.TrimSpace(answer))
	if answer == "" {
		return Output{}, fmt.Errorf("generate: model returned empty answer")
	}

	return Output{Answer: answer, Citations: Citations(usable)}, nil
}

// NormalizeHeadings repairs markdown headings missing the space after
// the hash run.
func NormalizeHeadings(s string) string {
	return headingFix.ReplaceAllString(s, "$1 $2")
}

// Citations builds one citation per document, preserving order.
func Citations(docs []schema.Document) []schema.Citation {
	out := make([]schema.Citation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, schema.Citation{
			Title:   doc.Title,
			URL:     doc.URL,
			Content: doc.Content,
			Snippet: snippet(doc.Content),
		})
	}
	return out
}

// snippet truncates on a rune boundary; byte slicing would split
// multibyte characters in non-Latin content.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}
	return string(runes[:snippetLen]) + "..."
}
