package suggest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos/internal/agent"
	"cosmos/internal/evidence"
	"cosmos/internal/provider"
)

type fakeSnippetSource struct{}

func (fakeSnippetSource) Snippets(path string) []evidence.Snippet {
	return []evidence.Snippet{{Path: path, StartLine: 1, Text: "1\tfunc doWork() error {\n2\t  if err != nil { return nil }\n"}}
}

// fixedClient always finalizes immediately with one grounded finding.
type fixedClient struct{}

func (fixedClient) Slug() string { return "fixed" }

func (fixedClient) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	finding := map[string]interface{}{
		"kind":              "bugfix",
		"priority":          "high",
		"confidence":        "high",
		"primary_file":      "internal/work/runner.go",
		"summary":           "When an error is non-nil, the function discards it and returns success anyway",
		"technical_detail":  "doWork swallows any error from the inner call.",
		"observed_behavior": "doWork checks err is non-nil but still returns nil",
		"impact_class":      "correctness",
		"evidence_refs":     []map[string]interface{}{{"snippet_id": 0, "path": "internal/work/runner.go", "line": 1}},
	}
	return provider.CompletionResponse{
		ToolCalls: []provider.ToolCall{{
			ID:   "c1",
			Name: "report_back",
			Arguments: map[string]interface{}{
				"role":     "bug_hunter",
				"findings": []map[string]interface{}{finding},
			},
		}},
	}, nil
}

func (fixedClient) CompleteStream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamDelta, <-chan error) {
	d := make(chan provider.StreamDelta)
	e := make(chan error)
	close(d)
	close(e)
	return d, e
}

func TestPipelineRunProducesSelectedSuggestions(t *testing.T) {
	counter := 0
	newID := func() string {
		counter++
		return fmt.Sprintf("sg-%d", counter)
	}

	newLoop := func(role string) *agent.Loop {
		return agent.NewLoop(fixedClient{}, nil, agent.DefaultConfig())
	}

	p := NewPipeline(newLoop, fakeSnippetSource{}, newID)
	signals := []evidence.FileSignal{
		{Path: "internal/work/runner.go", Churn: 1, Complexity: 0.8, Recency: 0.5},
	}

	result := p.Run(context.Background(), signals, evidence.WorkContext{Branch: "main"})

	require.NotEmpty(t, result.Suggestions)
	for _, s := range result.Suggestions {
		assert.Equal(t, ValidationValidated, s.ValidationState)
		assert.NotEmpty(t, s.ID)
	}
	assert.GreaterOrEqual(t, result.Gate.Final, 1)
}
