package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homimatch/server/internal/apperr"
)

func TestTaxonomyKinds(t *testing.T) {
	assert.True(t, apperr.IsKind(apperr.Validation("bad_input", "x"), apperr.KindValidation))
	assert.True(t, apperr.IsKind(apperr.Authorization("not_participant", "x"), apperr.KindAuthorization))
	assert.True(t, apperr.IsKind(apperr.NotFound("match_not_found", "x"), apperr.KindNotFound))
	assert.True(t, apperr.IsKind(apperr.Conflict("quota_exceeded", "x"), apperr.KindConflict))
	assert.True(t, apperr.IsKind(apperr.Dependency(errors.New("boom")), apperr.KindDependency))

	assert.False(t, apperr.IsKind(errors.New("plain"), apperr.KindConflict))
}

func TestDependencyHidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apperr.Dependency(cause)

	// Cause stays reachable for logs and unwrapping...
	assert.ErrorIs(t, err, cause)

	// ...but the caller-facing code and message are generic.
	e, ok := apperr.As(fmt.Errorf("op: %w", err))
	require.True(t, ok)
	assert.Equal(t, "internal_error", e.Code)
	assert.Equal(t, "internal server error", e.Message)
}
