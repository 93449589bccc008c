package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_CopiesLeaveSentinelUntouched(t *testing.T) {
	e := ErrConflict.WithDetails(map[string]interface{}{"constraint": "routes_slug_key"})

	assert.Equal(t, "routes_slug_key", e.Details["constraint"])
	assert.Empty(t, ErrConflict.Details)
	assert.True(t, stderrors.Is(e, ErrConflict))
	assert.False(t, stderrors.Is(e, ErrNotFound))
}

func TestAppError_Wrap(t *testing.T) {
	cause := fmt.Errorf("duplicate key value violates unique constraint")
	e := ErrConflict.Wrap(cause)

	assert.ErrorIs(t, e, ErrConflict)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, cause.Error(), e.Cause())
	assert.Contains(t, e.Error(), "CONFLICT")
	assert.Equal(t, "", ErrConflict.Cause())
}

func TestStepError(t *testing.T) {
	inner := ErrAccessDenied.Wrap(fmt.Errorf("new row violates row-level security policy"))
	err := AtStep("fares", inner)

	var se *StepError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, "fares", se.Step)
	assert.ErrorIs(t, err, ErrAccessDenied)

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrAccessDenied.StatusCode, appErr.StatusCode)

	again := AtStep("attachments", fmt.Errorf("outer: %w", err))
	require.True(t, stderrors.As(again, &se))
	assert.Equal(t, "fares", se.Step, "first step wins")

	assert.Nil(t, AtStep("route", nil))
}

func TestHelpers(t *testing.T) {
	nf := NotFound("route", "kimara")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "route", nf.Details["entity"])

	it := InvalidTransition("draft", "published")
	assert.Contains(t, it.Message, "draft -> published")

	ur := UnresolvedReference("stop", "tmp-1")
	assert.Equal(t, 422, ur.StatusCode)

	v := Validation(Violation{Field: "slug", Message: "is required"})
	assert.Equal(t, "slug: is required", v.Message)
	assert.Len(t, v.Details["violations"], 1)
}
