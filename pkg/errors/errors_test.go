package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeMatching(t *testing.T) {
	err := ErrNotFound("db")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsCyclicDependency(err))
	assert.True(t, stderrors.Is(err, ErrNotFoundSentinel))
	assert.Contains(t, err.Error(), "db")
}

func TestCauseUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrConstruction("Conn", cause)

	assert.True(t, IsConstruction(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCycleContext(t *testing.T) {
	err := ErrCyclicDependency([]string{"a", "b", "a"})
	require.True(t, IsCyclicDependency(err))
	assert.Equal(t, []string{"a", "b", "a"}, Cycle(err))
	assert.Contains(t, err.Error(), "a -> b -> a")

	assert.Nil(t, Cycle(ErrNotFound("x")))
	assert.Nil(t, Cycle(stderrors.New("plain")))
}

func TestWithContext(t *testing.T) {
	err := ErrUnknownTarget("Conn").WithContext("document", "services.yaml")
	assert.Equal(t, "services.yaml", err.Context["document"])
	assert.Equal(t, "Conn", err.Context["target"])
}

func TestParseAtCarriesPosition(t *testing.T) {
	err := ErrParseAt("bad scalar", 3, 7, nil)
	assert.True(t, IsParseError(err))
	assert.Equal(t, 3, err.Context["line"])
	assert.Equal(t, 7, err.Context["column"])
	assert.Contains(t, err.Error(), "line 3")
}

func TestWrappedMatching(t *testing.T) {
	inner := ErrDirectiveConflict("$args and named arguments")
	var e *Error
	require.True(t, As(inner, &e))
	assert.Equal(t, CodeDirectiveConflict, e.Code)
	assert.True(t, IsDirectiveConflict(inner))
}
