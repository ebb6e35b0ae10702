// Package translate moves text between the user's language and the
// pivot language the rest of the pipeline runs in.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/resilience-labs/climatechat/language"
	"github.com/resilience-labs/climatechat/llm"
)

const systemMessage = `You are a professional translator. Translate the text exactly, preserving meaning, tone and formatting (including markdown). Output only the translation, nothing else.`

// Translator translates via the shared completion provider.
type Translator struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Translator {
	return &Translator{provider: provider}
}

// Translate converts text from one ISO 639-1 code to another. Identical
// codes or empty text pass through untouched.
func (t *Translator) Translate(ctx context.Context, text, fromCode, toCode string) (string, error) {
	if fromCode == toCode || strings.TrimSpace(text) == "" {
		return text, nil
	}
	user := fmt.Sprintf("Translate from %s to %s:\n\n%s",
		language.NameOf(fromCode), language.NameOf(toCode), text)
	out, err := t.provider.GenerateWithSystem(ctx, systemMessage, user)
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", fromCode, toCode, err)
	}
	return strings.TrimSpace(out), nil
}
