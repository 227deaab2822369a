package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateReadinessFullScoreWhenVerifiedAndDetailed(t *testing.T) {
	s := Suggestion{
		Summary:           "The retry loop never resets its backoff counter after a successful call completes normally.",
		VerificationState: VerificationVerified,
		EvidenceSnippet:   "10\tfunc retry() {\n11\t  backoff = initial\n",
	}
	AnnotateReadiness(&s)
	assert.InDelta(t, 1.0, s.ReadinessScore, 1e-9)
	assert.Empty(t, s.ReadinessFlags)
}

func TestAnnotateReadinessFlagsUngroundedClaim(t *testing.T) {
	s := Suggestion{
		Summary:           "The retry loop never resets its backoff counter after a successful call completes normally.",
		VerificationState: VerificationUnverified,
	}
	AnnotateReadiness(&s)
	assert.Contains(t, s.ReadinessFlags, FlagClaimNotGrounded)
	assert.Less(t, s.ReadinessScore, 1.0)
}

func TestAnnotateReadinessFlagsCommentHeavyEvidence(t *testing.T) {
	s := Suggestion{
		Summary:           "The retry loop never resets its backoff counter after a successful call completes normally.",
		VerificationState: VerificationVerified,
		EvidenceSnippet:   "10\t// explains the retry loop\n11\t// in great detail here\n",
	}
	AnnotateReadiness(&s)
	assert.Contains(t, s.ReadinessFlags, FlagEvidenceTopCommentRatio)
}
