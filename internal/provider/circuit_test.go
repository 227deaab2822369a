package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensOnTimeout(t *testing.T) {
	b := newCircuitBreaker()
	assert.False(t, b.open("p1"))

	b.recordFailure("p1", KindTimeout)
	assert.True(t, b.open("p1"))
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	b := newCircuitBreaker()
	b.recordFailure("p1", KindServer)
	require := assert.New(t)
	require.True(b.open("p1"))

	b.recordSuccess("p1")
	require.False(b.open("p1"))
}

func TestCircuitBreakerForcesOpenOnConsecutiveFailures(t *testing.T) {
	b := newCircuitBreaker()
	for i := 0; i < consecutiveFailureThreshold; i++ {
		b.recordFailure("p1", KindAuth) // a kind that alone wouldn't open it
	}
	assert.True(t, b.open("p1"))
}
