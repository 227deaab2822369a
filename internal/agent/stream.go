package agent

import (
	"context"
	"strings"

	"cosmos/internal/provider"
)

// Sink receives coalesced streaming output for display during a turn.
// Reasoning text is coalesced into a single line per call and capped at
// reasoningPreviewCap characters with a truncation notice. Tool-call deltas
// are merged "last call wins" per slot by the stream reader and are not
// passed to the sink.
type Sink interface {
	OnContent(delta string)
	OnReasoning(coalesced string, truncated bool)
}

// RunStreaming behaves like Run but pushes coalesced content/reasoning
// deltas to sink as they arrive for the turns where streaming applies. The
// final Result is identical in shape to the buffered path.
func (l *Loop) RunStreaming(ctx context.Context, systemPrompt, userPrompt string, sink Sink) Result {
	if sink == nil {
		return l.Run(ctx, systemPrompt, userPrompt)
	}
	l.sink = sink
	defer func() { l.sink = nil }()
	return l.Run(ctx, systemPrompt, userPrompt)
}

// streamOneTurn consumes a streaming completion, coalescing deltas onto the
// sink, and returns the assembled CompletionResponse equivalent to what a
// buffered call would have produced.
func (l *Loop) streamOneTurn(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	req.Stream = true
	deltas, errs := l.client.CompleteStream(ctx, req)

	var content strings.Builder
	var reasoning strings.Builder
	truncated := false
	toolCallsBySlot := map[int]provider.ToolCall{}
	slotOrder := []int{}

	for d := range deltas {
		if d.Done {
			break
		}
		if d.Content != "" {
			content.WriteString(d.Content)
			if l.sink != nil {
				l.sink.OnContent(d.Content)
			}
		}
		if d.Reasoning != "" {
			if reasoning.Len() < reasoningPreviewCap {
				remaining := reasoningPreviewCap - reasoning.Len()
				if len(d.Reasoning) > remaining {
					reasoning.WriteString(d.Reasoning[:remaining])
					truncated = true
				} else {
					reasoning.WriteString(d.Reasoning)
				}
			} else {
				truncated = true
			}
			if l.sink != nil {
				l.sink.OnReasoning(reasoning.String(), truncated)
			}
		}
		for i, tc := range d.ToolCalls {
			if _, seen := toolCallsBySlot[i]; !seen {
				slotOrder = append(slotOrder, i)
			}
			toolCallsBySlot[i] = tc // last call wins per worker slot
		}
	}

	if err := <-errs; err != nil {
		return provider.CompletionResponse{}, err
	}

	resp := provider.CompletionResponse{Content: content.String()}
	for _, slot := range slotOrder {
		resp.ToolCalls = append(resp.ToolCalls, toolCallsBySlot[slot])
	}
	return resp, nil
}
