package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	slug   string
	err    error
	resp   CompletionResponse
	calls  int
}

func (s *stubClient) Slug() string { return s.slug }

func (s *stubClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return CompletionResponse{}, s.err
	}
	return s.resp, nil
}

func (s *stubClient) CompleteStream(ctx context.Context, req CompletionRequest) (<-chan StreamDelta, <-chan error) {
	d := make(chan StreamDelta)
	e := make(chan error)
	close(d)
	close(e)
	return d, e
}

func TestRouterFailsOverToSecondProvider(t *testing.T) {
	primary := &stubClient{slug: "primary", err: &Error{Kind: KindServer, Message: "boom"}}
	fallback := &stubClient{slug: "fallback", resp: CompletionResponse{Content: "ok"}}

	r := NewRouter(primary, fallback)
	resp, attempts, err := r.Complete(context.Background(), CompletionRequest{}, []string{"primary", "fallback"}, 10*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	require.Len(t, attempts, 2)
	assert.Equal(t, "error", attempts[0].Outcome)
	assert.Equal(t, "ok", attempts[1].Outcome)
}

func TestRouterSkipsOpenCircuit(t *testing.T) {
	primary := &stubClient{slug: "primary"}
	fallback := &stubClient{slug: "fallback", resp: CompletionResponse{Content: "fallback-won"}}

	r := NewRouter(primary, fallback)
	r.breaker.recordFailure("primary", KindTimeout)

	resp, attempts, err := r.Complete(context.Background(), CompletionRequest{}, []string{"primary", "fallback"}, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "fallback-won", resp.Content)
	assert.Equal(t, 0, primary.calls)
	require.Len(t, attempts, 1)
}

func TestRouterAllCircuitsOpenReturnsNoEndpoints(t *testing.T) {
	primary := &stubClient{slug: "primary"}
	r := NewRouter(primary)
	r.breaker.recordFailure("primary", KindTimeout)

	_, _, err := r.Complete(context.Background(), CompletionRequest{}, []string{"primary"}, 10*time.Second)
	assert.Error(t, err)
}

func TestAllocateSlicesBelowThresholdIsPrimaryOnly(t *testing.T) {
	slices := allocateSlices([]string{"a", "b", "c"}, 2*time.Second)
	assert.Equal(t, 2*time.Second, slices[0])
	assert.Equal(t, time.Duration(0), slices[1])
	assert.Equal(t, time.Duration(0), slices[2])
}

func TestAllocateSlicesWeightsPrimaryHeavily(t *testing.T) {
	slices := allocateSlices([]string{"a", "b"}, 30*time.Second)
	assert.Greater(t, slices[0], slices[1])
	assert.LessOrEqual(t, slices[0], maxPrimarySlice)
}
