// Package llm provides the chat-completion provider used for answer
// generation, translation and conversation rewriting.
package llm

import "context"

// Provider is a chat completion backend.
type Provider interface {
	// GenerateCompletion sends a bare user prompt.
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	// GenerateWithSystem sends a system instruction plus user prompt.
	GenerateWithSystem(ctx context.Context, system, user string) (string, error)
}
