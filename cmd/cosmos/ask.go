package main

import (
	"context"
	"fmt"

	"cosmos/internal/provider"
)

// providerAsker answers free-text Ask-panel questions with a single
// completion call against the configured provider, no tool loop: the
// question is about the repository in general, not a scoped code-change
// task, so it doesn't need report_back's structured findings contract.
type providerAsker struct {
	client provider.Client
}

func (a providerAsker) Ask(ctx context.Context, question string) (string, error) {
	resp, err := a.client.Complete(ctx, provider.CompletionRequest{
		SystemPrompt: "You are a terse assistant answering questions about a local source code repository. Answer directly; ask for clarification only if the question is genuinely ambiguous.",
		Messages: []provider.Message{
			{Role: "user", Content: question},
		},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return resp.Content, nil
}
