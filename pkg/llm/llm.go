package llm

import "context"

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatModelFunc adapts a plain function to ChatModel.
type ChatModelFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f ChatModelFunc) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
