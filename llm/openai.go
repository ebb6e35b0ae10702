package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion API.
type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	callTimeout time.Duration
}

// OpenAIOptions configures the provider.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// CallTimeout bounds one completion call. Default 300s: long enough
	// for big grounding prompts, short enough to not hang a request
	// forever.
	CallTimeout time.Duration
}

func NewOpenAIProvider(opt OpenAIOptions) *OpenAIProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(opt.APIKey)}
	if opt.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opt.BaseURL))
	}
	if opt.MaxTokens <= 0 {
		opt.MaxTokens = 1024
	}
	if opt.CallTimeout <= 0 {
		opt.CallTimeout = 300 * time.Second
	}
	return &OpenAIProvider{
		client:      openai.NewClient(reqOpts...),
		model:       opt.Model,
		temperature: opt.Temperature,
		maxTokens:   opt.MaxTokens,
		callTimeout: opt.CallTimeout,
	}
}

func (p *OpenAIProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return p.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
}

func (p *OpenAIProvider) GenerateWithSystem(ctx context.Context, system, user string) (string, error) {
	return p.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	})
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       p.model,
		Temperature: openai.Float(p.temperature),
		MaxTokens:   openai.Int(int64(p.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
