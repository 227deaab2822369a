package suggest

import (
	"context"
	"time"

	"cosmos/internal/agent"
	"cosmos/internal/evidence"
	"cosmos/internal/logging"
)

// LoopFactory builds a fresh agentic loop for one worker role. The pipeline
// calls it once per shard so each worker gets its own Loop state.
type LoopFactory func(role string) *agent.Loop

// Pipeline ties evidence assembly, generation, normalization, validation,
// selection, and readiness annotation into one run.
type Pipeline struct {
	Roles      []string
	NewLoop    LoopFactory
	Src        SnippetSource
	GateConfig GateConfig
	SoftTarget int
	HardMax    int
	NewID      func() string
}

// NewPipeline builds a Pipeline with the documented defaults (two workers,
// soft target 6, hard max 12).
func NewPipeline(newLoop LoopFactory, src SnippetSource, newID func() string) *Pipeline {
	return &Pipeline{
		Roles:      DefaultRoles(),
		NewLoop:    newLoop,
		Src:        src,
		GateConfig: DefaultGateConfig(),
		SoftTarget: DefaultSoftTarget,
		HardMax:    DefaultHardMax,
		NewID:      newID,
	}
}

// RunResult is everything one pipeline run produces.
type RunResult struct {
	Suggestions []Suggestion
	Gate        GateSnapshot
	Pack        evidence.EvidencePack
}

// Run assembles the evidence pack from signals, shards focus files across
// workers, generates a draft per worker, normalizes and validates every
// draft, then selects and annotates the final set.
func (p *Pipeline) Run(ctx context.Context, signals []evidence.FileSignal, workCtx evidence.WorkContext) RunResult {
	start := time.Now()

	pack := AssembleEvidencePack(signals, p.Src)

	ranked := make([]string, len(signals))
	for i, sig := range RankFiles(signals) {
		ranked[i] = sig.Path
	}
	shards := ShardFiles(ranked, len(p.Roles))

	var drafts []Suggestion
	for i, role := range p.Roles {
		focus := []string{}
		if i < len(shards) {
			focus = shards[i]
		}
		workerCtx := workCtx
		workerCtx.FocusHints = focus

		loop := p.NewLoop(role)
		d := Generate(ctx, loop, role, pack, workerCtx, p.NewID)
		logging.SuggestDebug("suggest: worker %q produced %d raw findings", role, len(d))
		drafts = append(drafts, d...)
	}

	normalized := make([]Suggestion, 0, len(drafts))
	for _, s := range drafts {
		if Normalize(&s) {
			normalized = append(normalized, s)
		}
	}

	for i := range normalized {
		Validate(&normalized[i], pack)
	}

	gate := ComputeGate(normalized, p.GateConfig, time.Since(start), 0)

	selected := Select(normalized, p.SoftTarget, p.HardMax)
	for i := range selected {
		AnnotateReadiness(&selected[i])
	}

	return RunResult{Suggestions: selected, Gate: gate, Pack: pack}
}
