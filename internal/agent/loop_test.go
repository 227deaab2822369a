package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos/internal/provider"
)

type scriptedClient struct {
	responses []provider.CompletionResponse
	errs      []error
	calls     int
}

func (c *scriptedClient) Slug() string { return "scripted" }

func (c *scriptedClient) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	i := c.calls
	c.calls++
	if i >= len(c.responses) {
		return provider.CompletionResponse{}, c.errs[len(c.errs)-1]
	}
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return c.responses[i], err
}

func (c *scriptedClient) CompleteStream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamDelta, <-chan error) {
	d := make(chan provider.StreamDelta)
	e := make(chan error)
	close(d)
	close(e)
	return d, e
}

func reportBackCall(findings []map[string]interface{}) provider.ToolCall {
	return provider.ToolCall{
		ID:   "call-1",
		Name: reportBackToolName,
		Arguments: map[string]interface{}{
			"role":     "bug_hunter",
			"findings": findings,
		},
	}
}

func TestLoopFinalizesOnImmediateReportBack(t *testing.T) {
	client := &scriptedClient{
		responses: []provider.CompletionResponse{
			{ToolCalls: []provider.ToolCall{reportBackCall([]map[string]interface{}{{"summary": "x"}})}},
		},
	}
	l := NewLoop(client, BuiltinTools(t.TempDir()), DefaultConfig())
	result := l.Run(context.Background(), "system", "user")

	assert.Equal(t, ReasonReportBackOK, result.Trace.TerminationReason)
	assert.True(t, result.Trace.FinalizedWithReportBack)
	require.Len(t, result.ReportBack.Findings, 1)
}

func TestLoopExecutesToolsThenFinalizes(t *testing.T) {
	root := t.TempDir()
	client := &scriptedClient{
		responses: []provider.CompletionResponse{
			{ToolCalls: []provider.ToolCall{{ID: "c1", Name: "list_directory", Arguments: map[string]interface{}{"path": "."}}}},
			{ToolCalls: []provider.ToolCall{reportBackCall(nil)}},
		},
	}
	l := NewLoop(client, BuiltinTools(root), DefaultConfig())
	result := l.Run(context.Background(), "system", "user")

	assert.Equal(t, ReasonReportBackOK, result.Trace.TerminationReason)
	require.Len(t, result.Trace.Steps, 2)
	assert.Equal(t, []string{"list_directory"}, result.Trace.Steps[0].ToolNames)
}

func TestLoopEmptyResponseTerminates(t *testing.T) {
	client := &scriptedClient{responses: []provider.CompletionResponse{{}}}
	l := NewLoop(client, BuiltinTools(t.TempDir()), DefaultConfig())
	result := l.Run(context.Background(), "system", "user")
	assert.Equal(t, ReasonEmptyResponse, result.Trace.TerminationReason)
}

func TestLoopRepeatedToolErrorsTerminate(t *testing.T) {
	root := t.TempDir()
	badCall := provider.ToolCall{ID: "c1", Name: "file_head", Arguments: map[string]interface{}{"path": "/absolute/not/allowed"}}
	responses := make([]provider.CompletionResponse, 0)
	for i := 0; i < 10; i++ {
		responses = append(responses, provider.CompletionResponse{ToolCalls: []provider.ToolCall{badCall}})
	}
	client := &scriptedClient{responses: responses}

	cfg := DefaultConfig()
	cfg.MaxIterations = 10
	l := NewLoop(client, BuiltinTools(root), cfg)
	result := l.Run(context.Background(), "system", "user")

	assert.Equal(t, ReasonToolErrorLoop, result.Trace.TerminationReason)
}

func TestLoopFinalizationGraceForcesReportBack(t *testing.T) {
	root := t.TempDir()
	explore := provider.CompletionResponse{ToolCalls: []provider.ToolCall{{ID: "c1", Name: "list_directory", Arguments: map[string]interface{}{"path": "."}}}}
	responses := []provider.CompletionResponse{explore, explore, explore, explore, reportBackResp()}
	client := &scriptedClient{responses: responses}

	cfg := Config{MaxIterations: 3, FinalizationGrace: 2, WallClockBudget: 10 * time.Second, MaxParallelTools: 4, Temperature: 0.1}
	l := NewLoop(client, BuiltinTools(root), cfg)
	result := l.Run(context.Background(), "system", "user")

	assert.Equal(t, ReasonReportBackOK, result.Trace.TerminationReason)
	found := false
	for _, s := range result.Trace.Steps {
		if s.FinalizationRound {
			found = true
		}
	}
	assert.True(t, found, "at least one step should be marked as a finalization round")
}

func reportBackResp() provider.CompletionResponse {
	return provider.CompletionResponse{ToolCalls: []provider.ToolCall{reportBackCall(nil)}}
}
