package cachestore

import "time"

// SuggestionQualityRecord captures a per-suggestion validation outcome and
// recovery counters. Every counter defaults to zero and every optional
// outcome field defaults to absent so older rows deserialize cleanly.
type SuggestionQualityRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	RunID            string    `json:"run_id"`
	SchemaVersion    int       `json:"schema_version,omitempty"`
	SuggestionID     string    `json:"suggestion_id"`
	ValidationState  string    `json:"validation_state"`
	VerificationState string   `json:"verification_state,omitempty"`
	NormalizeRetries int       `json:"normalize_retries"`
	ValidateRetries  int       `json:"validate_retries"`
	DroppedReason    string    `json:"dropped_reason,omitempty"`
}

// SuggestionRunAuditRecord is the finalized snapshot of one generation run.
type SuggestionRunAuditRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	SchemaVersion int       `json:"schema_version,omitempty"`
	FinalCount    int       `json:"final_count"`
	Validated     int       `json:"validated"`
	Rejected      int       `json:"rejected"`
	UniqueFiles   int       `json:"unique_files"`
	DominantFileRatio float64 `json:"dominant_file_ratio"`
	GatePassed    bool      `json:"gate_passed"`
	FailReasons   []string  `json:"fail_reasons,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// ApplyPlanAuditRecord records an apply-plan lifecycle event with the exact
// preview the user saw.
type ApplyPlanAuditRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id,omitempty"`
	SuggestionID string    `json:"suggestion_id"`
	Event        string    `json:"event"` // "opened" | "confirmed"
	FriendlyTitle string   `json:"friendly_title,omitempty"`
	ProblemSummary string  `json:"problem_summary,omitempty"`
	AffectedFiles []string `json:"affected_files,omitempty"`
}

// ImplementationHarnessRecord summarizes one apply-harness execution.
// Defaults: SchemaVersion=4, RunContext="interactive", FinalizationStatus="".
type ImplementationHarnessRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	SchemaVersion      int       `json:"schema_version"`
	RunContext         string    `json:"run_context"`
	SuggestionID       string    `json:"suggestion_id"`
	Success            bool      `json:"success"`
	FinalizationStatus string    `json:"finalization_status"`
	DurationMillis     int64     `json:"duration_ms"`
}

// DefaultImplementationHarnessRecord returns a record with the documented
// schema defaults applied, so callers only need to fill in the outcome.
func DefaultImplementationHarnessRecord() ImplementationHarnessRecord {
	return ImplementationHarnessRecord{
		SchemaVersion:      4,
		RunContext:         "interactive",
		FinalizationStatus: "",
	}
}

// PipelineMetricRecord is a latency/cost bucket for one pipeline stage.
type PipelineMetricRecord struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	LatencyMs int64     `json:"latency_ms"`
	CostUSD   float64   `json:"cost_usd,omitempty"`
}
