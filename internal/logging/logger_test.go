package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeEnablesDebugCategories(t *testing.T) {
	err := Initialize(false, Config{DebugMode: true, Categories: map[string]bool{"agent": true, "vcs": false}})
	require.NoError(t, err)

	assert.True(t, enabled(CategoryAgent))
	assert.False(t, enabled(CategoryVCS))
	assert.True(t, enabled(CategorySuggest), "unlisted categories default to enabled")
}

func TestGetIsNoOpBeforeInitialize(t *testing.T) {
	mu.Lock()
	initialized = false
	base = nil
	mu.Unlock()

	l := Get(CategoryCache)
	assert.NotPanics(t, func() {
		l.Info("test message %d", 1)
		l.Debug("test message %d", 2)
	})
}

func TestVerboseForcesDebugMode(t *testing.T) {
	err := Initialize(true, Config{DebugMode: false})
	require.NoError(t, err)
	assert.True(t, enabled(CategoryProvider))
}
