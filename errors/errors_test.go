package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkersSurviveWrapping(t *testing.T) {
	err := DefinitionErrorf("pipeline %q: component %q is not wired", "test", "motif")
	err = Wrap(err, "verifying pipelines")
	err = WithDetail(err, "definition file: pipelines.xml")

	assert.True(t, IsDefinitionError(err))
	assert.False(t, IsConfigError(err))
	assert.False(t, IsExecutionError(err))
}

func TestWrapHelpersPreserveClass(t *testing.T) {
	base := New("disk full")

	cfg := WrapConfig(base, "reading manager.toml")
	require.True(t, IsConfigError(cfg))

	def := WrapDefinition(base, "parsing definition")
	require.True(t, IsDefinitionError(def))

	exe := WrapExecution(base, "running component")
	require.True(t, IsExecutionError(exe))

	// Wrapping must not leak the class into the other predicates.
	assert.False(t, IsDefinitionError(cfg))
	assert.False(t, IsExecutionError(def))
	assert.False(t, IsConfigError(exe))
}

func TestNilIsNoClass(t *testing.T) {
	assert.False(t, IsConfigError(nil))
	assert.False(t, IsDefinitionError(nil))
	assert.False(t, IsExecutionError(nil))
}
