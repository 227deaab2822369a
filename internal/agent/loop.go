package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"cosmos/internal/logging"
	"cosmos/internal/provider"
)

const (
	repeatedToolErrorThreshold = 3
	repeatedToolErrorMaxExtra  = 2
	finalizationNonReportBackRetryMax = 3
	invalidReportBackRetryMax         = 2
	reasoningPreviewCap               = 8000
	previewLen                        = 160
)

// Loop drives one agentic call: a bounded multi-turn conversation against a
// provider.Client that ends in exactly one report_back tool call.
type Loop struct {
	client provider.Client
	tools  []Tool
	cfg    Config
	sink   Sink
}

// NewLoop builds a Loop over client with the given tool catalog.
func NewLoop(client provider.Client, tools []Tool, cfg Config) *Loop {
	return &Loop{client: client, tools: tools, cfg: cfg}
}

func (l *Loop) toolByName(name string) *Tool {
	for i := range l.tools {
		if l.tools[i].Definition.Name == name {
			return &l.tools[i]
		}
	}
	return nil
}

func (l *Loop) toolDefs() []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(l.tools))
	for _, t := range l.tools {
		defs = append(defs, t.Definition)
	}
	return defs
}

// Run executes the loop for one systemPrompt/userPrompt pair, returning the
// finalized report_back payload (possibly empty on a fallback path) and the
// full trace.
func (l *Loop) Run(ctx context.Context, systemPrompt, userPrompt string) Result {
	start := time.Now()
	deadline := start.Add(l.cfg.WallClockBudget)

	messages := []provider.Message{{Role: "user", Content: userPrompt}}
	trace := Trace{}

	forcedReportBack := false
	finalizationNonReportBackRetries := 0
	invalidReportBackRetries := 0
	repeatedErrorSignature := ""
	repeatedErrorStreak := 0
	repeatedErrorInjections := 0

	for iteration := 1; iteration <= l.cfg.MaxIterations+l.cfg.FinalizationGrace; iteration++ {
		if ctx.Err() != nil {
			trace.TerminationReason = ReasonTimeout
			return Result{Trace: trace}
		}

		elapsed := time.Since(start)
		remaining := deadline.Sub(time.Now())
		inGraceZone := iteration > l.cfg.MaxIterations || elapsed >= l.cfg.WallClockBudget*3/4

		if inGraceZone && !forcedReportBack {
			forcedReportBack = true
			messages = append(messages, provider.Message{
				Role:    "user",
				Content: "Stop exploring. Call report_back now with your current findings, or an empty findings list if none are ready.",
			})
		}

		toolChoice := ""
		if forcedReportBack {
			toolChoice = reportBackToolName
		}

		reqCtx, cancel := context.WithTimeout(ctx, remaining)
		req := provider.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages:     messages,
			Tools:        l.toolDefs(),
			ToolChoice:   toolChoice,
			Mode:         provider.ModeChat,
			Temperature:  l.cfg.Temperature,
		}
		var resp provider.CompletionResponse
		var err error
		if l.sink != nil {
			resp, err = l.streamOneTurn(reqCtx, req)
		} else {
			resp, err = l.client.Complete(reqCtx, req)
		}
		cancel()

		if err != nil {
			if perr, ok := err.(*provider.Error); ok && perr.Kind == provider.KindTimeout {
				trace.TerminationReason = ReasonTimeoutFallbackEmptyReportBack
				return Result{Trace: trace}
			}
			logging.AgentDebug("agent loop: provider call failed: %v", err)
			trace.TerminationReason = ReasonEmptyResponseFallbackEmpty
			return Result{Trace: trace}
		}

		step := Step{
			Iteration:         iteration,
			FinalizationRound: forcedReportBack,
			ContentPreview:    truncate(resp.Content, previewLen),
		}
		for _, tc := range resp.ToolCalls {
			step.ToolNames = append(step.ToolNames, tc.Name)
			if tc.Name == reportBackToolName {
				step.CalledReportBack = true
			}
		}
		trace.Steps = append(trace.Steps, step)

		if resp.FinishReason == "content_filter" || resp.FinishReason == "refusal" {
			trace.TerminationReason = ReasonRefusal
			return Result{Trace: trace}
		}

		if strings.TrimSpace(resp.Content) == "" && len(resp.ToolCalls) == 0 {
			trace.TerminationReason = ReasonEmptyResponse
			return Result{Trace: trace}
		}

		reportCall, hasReportBack := extractReportBack(resp.ToolCalls)
		if hasReportBack {
			rb, valid, validationErr := parseReportBack(reportCall)
			if valid {
				trace.FinalizedWithReportBack = true
				trace.TerminationReason = ReasonReportBackOK
				return Result{ReportBack: rb, Trace: trace}
			}

			invalidReportBackRetries++
			trace.InvalidReportBackCount = invalidReportBackRetries
			if invalidReportBackRetries > invalidReportBackRetryMax {
				if forcedReportBack {
					// Already past the finalization threshold: give up softly
					// rather than treat this as a hard exhaustion failure.
					trace.TerminationReason = ReasonInvalidReportBackFallbackEmpty
				} else {
					trace.TerminationReason = ReasonInvalidReportBackExhausted
				}
				return Result{Trace: trace}
			}
			messages = appendAssistantAndTools(messages, resp, map[string]string{
				reportCall.ID: fmt.Sprintf("invalid report_back payload: %v. Resubmit with corrected structure.", validationErr),
			})
			continue
		}

		if forcedReportBack {
			// We are past the finalization threshold and the assistant did not
			// produce a valid report_back call (checked above): whether it
			// replied with text or called some other tool, that does not
			// satisfy finalization.
			finalizationNonReportBackRetries++
			if finalizationNonReportBackRetries > finalizationNonReportBackRetryMax {
				if len(resp.ToolCalls) == 0 {
					trace.TerminationReason = ReasonTextFallbackEmpty
				} else {
					trace.TerminationReason = ReasonFinalizationNonReportBackFallbackEmpty
				}
				return Result{Trace: trace}
			}
			messages = appendAssistantAndTools(messages, resp, rejectAllAsNonFinalizing(resp.ToolCalls))
			messages = append(messages, provider.Message{Role: "user", Content: "You must call report_back to finish, not reply with text or call other tools."})
			continue
		}

		if len(resp.ToolCalls) == 0 {
			// Plain text response with no tool calls, outside finalization:
			// treat as a textual finalization attempt.
			if looksLikeFindings(resp.Content) {
				trace.TerminationReason = ReasonTextReportBackOK
				return Result{ReportBack: ReportBack{Findings: nil}, Trace: trace}
			}
			trace.TerminationReason = ReasonTextInsteadOfReportBack
			return Result{Trace: trace}
		}

		toolResults, signature := l.executeTools(ctx, resp.ToolCalls)
		messages = appendAssistantAndTools(messages, resp, toolResults)

		if signature != "" {
			if signature == repeatedErrorSignature {
				repeatedErrorStreak++
			} else {
				repeatedErrorSignature = signature
				repeatedErrorStreak = 1
			}
			if repeatedErrorStreak >= repeatedToolErrorThreshold {
				repeatedErrorInjections++
				trace.RepeatedToolErrorCount = repeatedErrorInjections
				if repeatedErrorInjections > repeatedToolErrorMaxExtra {
					trace.TerminationReason = ReasonToolErrorLoop
					return Result{Trace: trace}
				}
				messages = append(messages, provider.Message{
					Role: "user",
					Content: fmt.Sprintf(
						"Every tool call is failing with %q. Re-read the path contract: paths must be repo-relative, no leading slash, no \"..\" segments, no symlink traversal.",
						signature,
					),
				})
				repeatedErrorStreak = 0
			}
		} else {
			repeatedErrorSignature = ""
			repeatedErrorStreak = 0
		}
	}

	trace.TerminationReason = ReasonTimeout
	return Result{Trace: trace}
}

// executeTools runs every tool call from one assistant turn with bounded
// parallelism and returns a map of call id -> result text; the caller
// restores the assistant's call order when appending results. It also returns a common error signature if every result in
// this round was an error with the same normalized signature.
func (l *Loop) executeTools(ctx context.Context, calls []provider.ToolCall) (map[string]string, string) {
	results := make([]string, len(calls))
	errs := make([]string, len(calls))
	sem := semaphore.NewWeighted(int64(maxInt(1, l.cfg.MaxParallelTools)))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call provider.ToolCall) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				errs[i] = normalizeErrorSignature(err.Error())
				results[i] = fmt.Sprintf("error: %v", err)
				return
			}
			defer sem.Release(1)

			tool := l.toolByName(call.Name)
			if tool == nil {
				errs[i] = "invalid_arguments"
				results[i] = fmt.Sprintf("error: unknown tool %q", call.Name)
				return
			}
			out, err := tool.Execute(ctx, call.Arguments)
			if err != nil {
				errs[i] = normalizeErrorSignature(err.Error())
				results[i] = fmt.Sprintf("error: %v", err)
				return
			}
			results[i] = out
		}(i, call)
	}
	wg.Wait()

	out := make(map[string]string, len(calls))
	for i, call := range calls {
		out[call.ID] = results[i]
	}

	signature := commonSignature(errs)
	return out, signature
}

func commonSignature(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	first := errs[0]
	if first == "" {
		return ""
	}
	for _, e := range errs[1:] {
		if e != first {
			return ""
		}
	}
	return first
}

func normalizeErrorSignature(msg string) string {
	for _, sig := range []string{"path_contract_violation", "invalid_arguments", "file_not_found"} {
		if strings.Contains(msg, sig) {
			return sig
		}
	}
	return "tool_error"
}

func extractReportBack(calls []provider.ToolCall) (provider.ToolCall, bool) {
	for _, c := range calls {
		if c.Name == reportBackToolName {
			return c, true
		}
	}
	return provider.ToolCall{}, false
}

func parseReportBack(call provider.ToolCall) (ReportBack, bool, error) {
	role, _ := call.Arguments["role"].(string)
	findingsRaw, ok := call.Arguments["findings"]
	if !ok {
		return ReportBack{}, false, fmt.Errorf("missing findings field")
	}

	raw, err := json.Marshal(findingsRaw)
	if err != nil {
		return ReportBack{}, false, fmt.Errorf("findings not serializable: %w", err)
	}
	var findings []map[string]interface{}
	if err := json.Unmarshal(raw, &findings); err != nil {
		return ReportBack{}, false, fmt.Errorf("findings is not a list of objects: %w", err)
	}

	return ReportBack{Role: role, Findings: findings}, true, nil
}

// appendAssistantAndTools records the assistant's message plus one
// tool-result message per call, in the assistant's original call order
// regardless of completion order.
func appendAssistantAndTools(messages []provider.Message, resp provider.CompletionResponse, results map[string]string) []provider.Message {
	assistantContent := resp.Content
	if assistantContent == "" && len(resp.ToolCalls) > 0 {
		names := make([]string, len(resp.ToolCalls))
		for i, c := range resp.ToolCalls {
			names[i] = c.Name
		}
		assistantContent = "(tool calls: " + strings.Join(names, ", ") + ")"
	}
	messages = append(messages, provider.Message{Role: "assistant", Content: assistantContent})

	for _, call := range resp.ToolCalls {
		messages = append(messages, provider.Message{
			Role:    "tool",
			Content: fmt.Sprintf("[%s] %s", call.Name, results[call.ID]),
		})
	}
	return messages
}

// rejectAllAsNonFinalizing builds placeholder tool results for a round that
// arrived during forced finalization but called tools instead of report_back;
// the calls are not executed, only acknowledged so the transcript stays
// well-formed.
func rejectAllAsNonFinalizing(calls []provider.ToolCall) map[string]string {
	results := make(map[string]string, len(calls))
	for _, c := range calls {
		results[c.ID] = "rejected: report_back is required now, this tool call was not executed"
	}
	return results
}

func looksLikeFindings(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
