package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cosmos/internal/agent"
	"cosmos/internal/evidence"
)

const (
	targetMinSuggestions = 10
	targetMaxSuggestions = 20
)

// systemPromptFor builds the role-specific system prompt. bug_hunter looks
// for correctness/reliability defects; security_reviewer looks for
// security-impact defects; any other role gets a generic framing.
func systemPromptFor(role string) string {
	switch role {
	case RoleBugHunter:
		return "You are a bug hunter reviewing a codebase for concrete, provable defects: " +
			"incorrect logic, missed edge cases, resource leaks, and reliability hazards. " +
			"Every claim must be grounded in a specific evidence snippet."
	case RoleSecurityReviewer:
		return "You are a security reviewer auditing a codebase for exploitable defects: " +
			"injection, unsafe deserialization, missing authorization checks, secret handling, " +
			"and other security-impact issues. Every claim must be grounded in a specific evidence snippet."
	default:
		return fmt.Sprintf("You are a %s reviewing a codebase for concrete, grounded improvements.", role)
	}
}

// userPromptFor inlines the evidence pack, the work context, and the output
// contract the worker must follow.
func userPromptFor(role string, pack evidence.EvidencePack, ctx evidence.WorkContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\n\n", role)
	fmt.Fprintf(&b, "Branch: %s\n", ctx.Branch)
	if len(ctx.StagedFiles) > 0 {
		fmt.Fprintf(&b, "Staged files: %s\n", strings.Join(ctx.StagedFiles, ", "))
	}
	if len(ctx.UnstagedFiles) > 0 {
		fmt.Fprintf(&b, "Unstaged files: %s\n", strings.Join(ctx.UnstagedFiles, ", "))
	}
	if len(ctx.FocusHints) > 0 {
		fmt.Fprintf(&b, "Focus hints: %s\n", strings.Join(ctx.FocusHints, ", "))
	}
	if ctx.Ethos != "" {
		fmt.Fprintf(&b, "\nRepo ethos:\n%s\n", ctx.Ethos)
	}

	b.WriteString("\nEvidence pack:\n")
	for _, s := range pack.Snippets {
		fmt.Fprintf(&b, "--- snippet %d: %s:%d ---\n%s\n", s.SnippetID, s.Path, s.StartLine, s.Text)
	}

	fmt.Fprintf(&b, "\nOutput contract: call report_back with a JSON object only. "+
		"Each finding's evidence_refs must contain exactly one item. Target %d-%d findings.\n",
		targetMinSuggestions, targetMaxSuggestions)
	return b.String()
}

// wireFinding mirrors the free-form JSON shape a worker's report_back
// findings take on the wire, before normalization/validation.
type wireFinding struct {
	Kind             string        `json:"kind"`
	Priority         string        `json:"priority"`
	Confidence       string        `json:"confidence"`
	PrimaryFile      string        `json:"primary_file"`
	AdditionalFiles  []string      `json:"additional_files"`
	Summary          string        `json:"summary"`
	TechnicalDetail  string        `json:"technical_detail"`
	EvidenceSnippet  string        `json:"evidence_snippet"`
	EvidenceRefs     []EvidenceRef `json:"evidence_refs"`
	ObservedBehavior string        `json:"observed_behavior"`
	ImpactClass      string        `json:"impact_class"`
}

// Generate runs one worker's agentic call and returns its draft
// suggestions, unvalidated and unnormalized. On any finalization failure
// (including the loop's own empty-report-with-role fallback on timeout) it
// returns an empty slice rather than an error — an empty report from a
// worker is an expected outcome, not a failure of the pipeline.
func Generate(ctx context.Context, loop *agent.Loop, role string, pack evidence.EvidencePack, workCtx evidence.WorkContext, idGen func() string) []Suggestion {
	result := loop.Run(ctx, systemPromptFor(role), userPromptFor(role, pack, workCtx))

	reportRole := result.ReportBack.Role
	if reportRole == "" {
		reportRole = role
	}

	drafts := make([]Suggestion, 0, len(result.ReportBack.Findings))
	for _, raw := range result.ReportBack.Findings {
		s, err := draftFromFinding(reportRole, raw)
		if err != nil {
			continue
		}
		s.ID = idGen()
		drafts = append(drafts, s)
	}
	return drafts
}

func draftFromFinding(role string, raw map[string]interface{}) (Suggestion, error) {
	blob, err := json.Marshal(raw)
	if err != nil {
		return Suggestion{}, err
	}
	var w wireFinding
	if err := json.Unmarshal(blob, &w); err != nil {
		return Suggestion{}, err
	}
	if w.PrimaryFile == "" || w.Summary == "" {
		return Suggestion{}, fmt.Errorf("finding missing primary_file or summary")
	}

	kind := Kind(w.Kind)
	s := Suggestion{
		Role:             role,
		Kind:             kind,
		Priority:         Priority(w.Priority),
		Confidence:       Confidence(w.Confidence),
		Category:         DeriveCategory(kind),
		PrimaryFile:      w.PrimaryFile,
		AdditionalFiles:  w.AdditionalFiles,
		Summary:          w.Summary,
		TechnicalDetail:  w.TechnicalDetail,
		EvidenceSnippet:  w.EvidenceSnippet,
		EvidenceRefs:     w.EvidenceRefs,
		ObservedBehavior: w.ObservedBehavior,
		ImpactClass:      ImpactClass(w.ImpactClass),
		ValidationState:  ValidationPending,
		VerificationState: VerificationUnverified,
	}
	return s, nil
}
