package suggest

import (
	"regexp"
	"strings"
	"time"

	"cosmos/internal/evidence"
)

// kindImpact maps each Kind to the ImpactClass it is expected to carry; a
// mismatch is a validation failure.
var kindImpact = map[Kind]ImpactClass{
	KindBugfix:       ImpactCorrectness,
	KindImprovement:  ImpactMaintainability,
	KindOptimization: ImpactPerformance,
	KindRefactoring:  ImpactMaintainability,
	KindSecurity:     ImpactSecurity,
	KindReliability:  ImpactReliability,
}

var tokenRe = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

// minSharedTokens is the lowest number of code tokens the observed-behavior
// clause must share with its referenced snippet to count as grounded.
const minSharedTokens = 2

// Validate scores one suggestion against its referenced snippet: the
// observed-behavior clause must share enough code tokens with the snippet
// text, and the impact class must match what the kind implies. It sets
// ValidationState and VerificationState in place and returns whether the
// suggestion validated.
func Validate(s *Suggestion, pack evidence.EvidencePack) bool {
	if len(s.EvidenceRefs) != 1 {
		s.ValidationState = ValidationRejected
		s.VerificationState = VerificationInsufficientEvidence
		return false
	}

	ref := s.EvidenceRefs[0]
	snippet, ok := pack.Lookup(ref.SnippetID)
	if !ok {
		s.ValidationState = ValidationRejected
		s.VerificationState = VerificationInsufficientEvidence
		return false
	}

	if !sharesTokens(s.ObservedBehavior, snippet.Text, minSharedTokens) {
		s.ValidationState = ValidationRejected
		s.VerificationState = VerificationContradicted
		return false
	}

	if wantImpact, ok := kindImpact[s.Kind]; ok && s.ImpactClass != wantImpact {
		s.ValidationState = ValidationRejected
		s.VerificationState = VerificationContradicted
		return false
	}

	s.ValidationState = ValidationValidated
	s.VerificationState = VerificationVerified
	return true
}

func sharesTokens(a, b string, min int) bool {
	bTokens := tokenSet(b)
	shared := 0
	for t := range tokenSet(a) {
		if bTokens[t] {
			shared++
			if shared >= min {
				return true
			}
		}
	}
	return shared >= min
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, t := range tokenRe.FindAllString(s, -1) {
		if len(t) < 3 {
			continue
		}
		out[strings.ToLower(t)] = true
	}
	return out
}

// GateConfig bounds the soft-fail gate.
type GateConfig struct {
	MinFinal   int
	MaxSuggestSeconds float64
}

// DefaultGateConfig mirrors the documented defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{MinFinal: 3, MaxSuggestSeconds: 300}
}

// GateSnapshot is the soft-fail gate's recorded outcome: it never discards
// suggestions, only records whether thresholds were met.
type GateSnapshot struct {
	Final                int      `json:"final"`
	Validated            int      `json:"validated"`
	Rejected             int      `json:"rejected"`
	DominantFileRatio    float64  `json:"dominant_file_ratio"`
	UniqueFileCount      int      `json:"unique_file_count"`
	EthosActionableCount int      `json:"ethos_actionable_count"`
	FailReasons          []string `json:"fail_reasons,omitempty"`
}

// ComputeGate summarizes a run's suggestions. ethosActionable counts
// suggestions whose summary was influenced by a non-empty repo ethos;
// callers that don't track this can pass 0.
func ComputeGate(suggestions []Suggestion, cfg GateConfig, elapsed time.Duration, ethosActionable int) GateSnapshot {
	snap := GateSnapshot{EthosActionableCount: ethosActionable}

	filesSeen := map[string]int{}
	for _, s := range suggestions {
		snap.Final++
		if s.ValidationState == ValidationValidated {
			snap.Validated++
		} else {
			snap.Rejected++
		}
		filesSeen[s.PrimaryFile]++
	}
	snap.UniqueFileCount = len(filesSeen)

	if snap.Final > 0 {
		max := 0
		for _, n := range filesSeen {
			if n > max {
				max = n
			}
		}
		snap.DominantFileRatio = float64(max) / float64(snap.Final)
	}

	if snap.Final < cfg.MinFinal {
		snap.FailReasons = append(snap.FailReasons, "final_count_below_min")
	}
	if cfg.MaxSuggestSeconds > 0 && elapsed.Seconds() > cfg.MaxSuggestSeconds {
		snap.FailReasons = append(snap.FailReasons, "suggest_time_above_max")
	}

	return snap
}
