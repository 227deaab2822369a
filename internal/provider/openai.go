package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cosmos/internal/logging"
)

// retryMaxAttempts bounds network/5xx/429 retries per request.
const retryMaxAttempts = 3

// retryBaseDelay is the exponential backoff starting point.
const retryBaseDelay = 2 * time.Second

// anonymousUserID is a process-wide stable id carried on every request for
// provider-side routing stickiness.
var anonymousUserID = newAnonymousID()

func newAnonymousID() string {
	return fmt.Sprintf("cosmos-%d", time.Now().UnixNano())
}

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI, OpenRouter, xAI, and local gateways all share this wire shape).
type OpenAIClient struct {
	cfg  Config
	http *http.Client
}

// NewOpenAIClient constructs a client for one OpenAI-compatible backend.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *OpenAIClient) Slug() string { return c.cfg.Slug }

type wireMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall  `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireToolDef struct {
	Type     string `json:"type"`
	Function struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		Parameters  map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

type wireRequest struct {
	Model          string          `json:"model"`
	Messages       []wireMessage   `json:"messages"`
	Tools          []wireToolDef   `json:"tools,omitempty"`
	ToolChoice     interface{}     `json:"tool_choice,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	StreamOptions  *wireStreamOpts `json:"stream_options,omitempty"`
	ResponseFormat *wireRespFormat `json:"response_format,omitempty"`
	User           string          `json:"user,omitempty"`
}

type wireStreamOpts struct {
	IncludeUsage bool `json:"include_usage"`
}

type wireRespFormat struct {
	Type       string          `json:"type"`
	JSONSchema *wireJSONSchema `json:"json_schema,omitempty"`
}

type wireJSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		Delta *struct {
			Content   string         `json:"content"`
			Reasoning string         `json:"reasoning"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    interface{} `json:"code"`
	} `json:"error,omitempty"`
}

func buildWireRequest(cfg Config, req CompletionRequest) wireRequest {
	messages := make([]wireMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, wireMessage{Role: m.Role, Content: m.Content})
	}

	wr := wireRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
		User:        anonymousUserID,
	}
	if req.Stream {
		wr.StreamOptions = &wireStreamOpts{IncludeUsage: true}
	}

	for _, t := range req.Tools {
		def := wireToolDef{Type: "function"}
		def.Function.Name = t.Name
		def.Function.Description = t.Description
		def.Function.Parameters = t.Parameters
		wr.Tools = append(wr.Tools, def)
	}

	switch req.ToolChoice {
	case "":
	case "none":
		wr.ToolChoice = "none"
	default:
		wr.ToolChoice = map[string]interface{}{
			"type":     "function",
			"function": map[string]string{"name": req.ToolChoice},
		}
	}

	switch req.Mode {
	case ModeJSONSchema:
		if req.Schema != nil {
			wr.ResponseFormat = &wireRespFormat{
				Type: "json_schema",
				JSONSchema: &wireJSONSchema{
					Name:   req.Schema.Name,
					Strict: true,
					Schema: req.Schema.Schema,
				},
			}
		}
	case ModeJSONObject:
		wr.ResponseFormat = &wireRespFormat{Type: "json_object"}
	case ModePromptCached:
		// OpenAI-compatible backends cache automatically on a stable system
		// prompt prefix; no extra wire field is needed beyond keeping the
		// system message identical across calls.
	}

	return wr
}

// Complete sends one buffered (non-streaming) completion request, applying
// the retry policy across network errors, 5xx, and 429.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	wr := buildWireRequest(c.cfg, req)
	wr.Stream = false

	var lastErr error
	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			if perr, ok := lastErr.(*Error); ok && perr.RetryAfter > 0 {
				delay = time.Duration(perr.RetryAfter) * time.Second
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return CompletionResponse{}, ctx.Err()
			}
		}

		resp, err := c.doRequest(ctx, wr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		logging.ProviderDebug("[%s] attempt %d failed: %v", c.cfg.Slug, attempt+1, err)

		perr, ok := err.(*Error)
		if !ok || !perr.Retryable() {
			return CompletionResponse{}, err
		}
	}
	return CompletionResponse{}, lastErr
}

func (c *OpenAIClient) doRequest(ctx context.Context, wr wireRequest) (CompletionResponse, error) {
	body, err := json.Marshal(wr)
	if err != nil {
		return CompletionResponse{}, &Error{Kind: KindOther, Message: "marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, &Error{Kind: KindOther, Message: "build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return CompletionResponse{}, &Error{Kind: KindTimeout, Message: "request timed out", Cause: err}
		}
		return CompletionResponse{}, &Error{Kind: KindNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, &Error{Kind: KindNetwork, Message: "read response", Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return CompletionResponse{}, &Error{Kind: KindAuth, StatusCode: 401, Message: "run setup: provider credentials rejected"}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return CompletionResponse{}, &Error{
			Kind: KindRateLimit, StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp, raw),
			Message:    "rate limited",
		}
	}
	if resp.StatusCode >= 500 {
		return CompletionResponse{}, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "server error: " + sanitize(string(raw))}
	}
	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, &Error{Kind: KindOther, StatusCode: resp.StatusCode, Message: "request failed: " + sanitize(string(raw))}
	}

	var wresp wireResponse
	if err := json.Unmarshal(raw, &wresp); err != nil {
		return CompletionResponse{}, &Error{Kind: KindParse, Message: "parse response: " + sanitize(string(raw)), Cause: err}
	}

	if wresp.Error != nil {
		if isServerLikeCode(wresp.Error.Code) {
			return CompletionResponse{}, &Error{Kind: KindServer, Message: "embedded provider error: " + wresp.Error.Message}
		}
		return CompletionResponse{}, &Error{Kind: KindOther, Message: "embedded provider error: " + wresp.Error.Message}
	}

	if len(wresp.Choices) == 0 {
		return CompletionResponse{}, &Error{Kind: KindOther, Message: "no completion returned"}
	}

	ch := wresp.Choices[0]
	out := CompletionResponse{
		Content:      ch.Message.Content,
		FinishReason: ch.FinishReason,
		Usage: UsageMetadata{
			PromptTokens:     wresp.Usage.PromptTokens,
			CompletionTokens: wresp.Usage.CompletionTokens,
			TotalTokens:      wresp.Usage.TotalTokens,
		},
	}
	for _, tc := range ch.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, toolCallFromWire(tc))
	}
	return out, nil
}

func toolCallFromWire(tc wireToolCall) ToolCall {
	var args map[string]interface{}
	_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
	return ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args}
}

func isServerLikeCode(code interface{}) bool {
	switch v := code.(type) {
	case float64:
		return v >= 500
	case string:
		n, err := strconv.Atoi(v)
		return err == nil && n >= 500
	default:
		return false
	}
}

// parseRetryAfter honors a Retry-After header first, then scrapes a numeric
// retry hint from the body; the result is bounded to [1, 300] seconds.
func parseRetryAfter(resp *http.Response, body []byte) int {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(h)); err == nil {
			return clampRetryAfter(n)
		}
	}
	var scraped struct {
		RetryAfter int `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &scraped); err == nil && scraped.RetryAfter > 0 {
		return clampRetryAfter(scraped.RetryAfter)
	}
	return 0
}

func clampRetryAfter(n int) int {
	if n < 1 {
		return 1
	}
	if n > 300 {
		return 300
	}
	return n
}

// CompleteStream sends a streaming completion request and merges content,
// reasoning, and tool-call deltas onto the returned channel.
func (c *OpenAIClient) CompleteStream(ctx context.Context, req CompletionRequest) (<-chan StreamDelta, <-chan error) {
	deltas := make(chan StreamDelta, 64)
	errs := make(chan error, 1)

	wr := buildWireRequest(c.cfg, req)
	wr.Stream = true

	go func() {
		defer close(deltas)
		defer close(errs)

		body, err := json.Marshal(wr)
		if err != nil {
			errs <- &Error{Kind: KindOther, Message: "marshal request", Cause: err}
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			errs <- &Error{Kind: KindOther, Message: "build request", Cause: err}
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			errs <- &Error{Kind: KindNetwork, Message: "request failed", Cause: err}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			errs <- &Error{Kind: KindOther, StatusCode: resp.StatusCode, Message: "stream request failed: " + sanitize(string(raw))}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				deltas <- StreamDelta{Done: true}
				return
			}

			var chunk wireResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Error != nil {
				errs <- &Error{Kind: KindOther, Message: chunk.Error.Message}
				return
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
				continue
			}
			d := chunk.Choices[0].Delta
			var out StreamDelta
			out.Content = d.Content
			out.Reasoning = d.Reasoning
			for _, tc := range d.ToolCalls {
				out.ToolCalls = append(out.ToolCalls, toolCallFromWire(tc))
			}
			select {
			case deltas <- out:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- &Error{Kind: KindNetwork, Message: "stream read error", Cause: err}
		}
	}()

	return deltas, errs
}
