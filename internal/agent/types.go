// Package agent implements the agentic tool-calling loop: a bounded,
// cooperative conversation with the provider gateway that drives tool
// execution between turns and finalizes via a mandatory report_back call.
package agent

import (
	"context"
	"time"

	"cosmos/internal/provider"
)

// TerminationReason is a closed enumeration recorded on every Trace.
type TerminationReason string

const (
	ReasonReportBackOK                        TerminationReason = "report_back_ok"
	ReasonTextReportBackOK                    TerminationReason = "text_report_back_ok"
	ReasonTextFallbackEmpty                   TerminationReason = "text_fallback_empty"
	ReasonTimeoutFallbackEmptyReportBack       TerminationReason = "timeout_fallback_empty_report_back"
	ReasonEmptyResponseFallbackEmpty          TerminationReason = "empty_response_fallback_empty"
	ReasonInvalidReportBackFallbackEmpty      TerminationReason = "invalid_report_back_fallback_empty"
	ReasonFinalizationNonReportBackFallbackEmpty TerminationReason = "finalization_non_report_back_fallback_empty"
	ReasonToolErrorLoop                       TerminationReason = "tool_error_loop"
	ReasonRefusal                             TerminationReason = "refusal"
	ReasonTimeout                             TerminationReason = "timeout"
	ReasonEmptyResponse                       TerminationReason = "empty_response"
	ReasonTextInsteadOfReportBack              TerminationReason = "text_instead_of_report_back"
	ReasonInvalidReportBackExhausted          TerminationReason = "invalid_report_back_exhausted"
)

// Config bounds one agentic call.
type Config struct {
	MaxIterations     int
	FinalizationGrace int
	WallClockBudget   time.Duration
	MaxParallelTools  int
	Temperature       float64
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:     12,
		FinalizationGrace: 2,
		WallClockBudget:   180 * time.Second,
		MaxParallelTools:  4,
		Temperature:       0.1,
	}
}

// Step is one recorded turn of the loop.
type Step struct {
	Iteration         int
	FinalizationRound bool
	ContentPreview    string
	ReasoningPreview  string
	ToolNames         []string
	CalledReportBack  bool
}

// Trace is the exclusive record of one agentic call, handed off to the
// caller on return.
type Trace struct {
	Steps                  []Step
	FinalizedWithReportBack bool
	TerminationReason       TerminationReason
	RepeatedToolErrorCount  int
	InvalidReportBackCount  int
}

// ReportBack is the mandatory finalization payload.
type ReportBack struct {
	Role     string                   `json:"role"`
	Findings []map[string]interface{} `json:"findings"`
}

// Result is what one agentic call returns to its caller.
type Result struct {
	ReportBack ReportBack
	Trace      Trace
}

// Tool is one callable tool exposed to the model.
type Tool struct {
	Definition provider.ToolDefinition
	Execute    func(ctx context.Context, args map[string]interface{}) (string, error)
}
