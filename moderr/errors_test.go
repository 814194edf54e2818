package moderr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.True(t, IsConflict(Conflict("busy")))
	assert.True(t, IsGateway(Gateway("call failed", errors.New("boom"))))
	assert.True(t, IsPersistence(Persistence("write failed", errors.New("disk"))))

	assert.False(t, IsConflict(NotFound("missing")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer context: %w", Conflict("already resolved"))
	assert.True(t, IsConflict(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("write failed", cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
