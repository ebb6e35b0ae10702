package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// ClimateSystemMessage is the persona every generation call runs under.
const ClimateSystemMessage = `You are a knowledgeable climate change educator. You answer questions about climate change, its causes, impacts, and solutions, grounded strictly in the source material provided with each question.

Rules:
- Base every statement on the provided sources. If the sources do not cover the question, say so plainly.
- Reflect the scientific consensus on climate change.
- Be clear and accessible; avoid jargon unless the user uses it first.
- Do not speculate beyond the sources and do not invent citations.`

// defaultDocTokenBudget caps how much source text goes into a prompt.
const defaultDocTokenBudget = 6000

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

// countTokens measures text with the cl100k_base encoding, falling back
// to a chars/4 estimate if the encoding data is unavailable.
func countTokens(text string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("llm: tiktoken unavailable, estimating token counts: %v", err)
			return
		}
		encoder = enc
	})
	if encoder == nil {
		return len(text) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}

// BuildDocumentsBlock serializes sources for grounding, numbered so the
// model can reference them. Documents past the token budget are dropped
// whole rather than cut mid-sentence.
func BuildDocumentsBlock(docs []schema.Document, tokenBudget int) string {
	if tokenBudget <= 0 {
		tokenBudget = defaultDocTokenBudget
	}
	var b strings.Builder
	used := 0
	for i, doc := range docs {
		block := fmt.Sprintf("Source %d (%s):\n%s\n\n", i+1, doc.Title, doc.Content)
		cost := countTokens(block)
		if used+cost > tokenBudget && used > 0 {
			logger.Debugf("llm: dropping %d source(s) over the %d token budget", len(docs)-i, tokenBudget)
			break
		}
		b.WriteString(block)
		used += cost
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildHistoryBlock renders past turns oldest first.
func BuildHistoryBlock(history []schema.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range history {
		b.WriteString("User: ")
		b.WriteString(turn.Query)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildGroundingPrompt assembles the user message for generation.
func BuildGroundingPrompt(query string, docs []schema.Document, history []schema.ConversationTurn) string {
	var b strings.Builder
	if block := BuildHistoryBlock(history); block != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	b.WriteString("Sources:\n")
	b.WriteString(BuildDocumentsBlock(docs, 0))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer the question using only the sources above.")
	return b.String()
}
