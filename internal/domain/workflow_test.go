package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusInReview, true},
		{StatusInReview, StatusPublished, true},
		{StatusInReview, StatusDraft, true},
		{StatusPublished, StatusDraft, true},
		{StatusDraft, StatusPublished, false},
		{StatusPublished, StatusInReview, false},
		{StatusDraft, StatusDraft, false},
		{StatusInReview, StatusInReview, false},
		{StatusPublished, StatusPublished, false},
		{Status("archived"), StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidTransition)

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, string(tt.from), appErr.Details["from"])
			assert.Equal(t, string(tt.to), appErr.Details["to"])
		})
	}
}

func TestInvalidTransitionDoesNotMutateSentinel(t *testing.T) {
	_ = CheckTransition(StatusDraft, StatusPublished)
	assert.Empty(t, errors.ErrInvalidTransition.Details)
	assert.Equal(t, "Workflow transition not permitted", errors.ErrInvalidTransition.Message)
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusInReview}, NextStatuses(StatusDraft))
	assert.ElementsMatch(t, []Status{StatusPublished, StatusDraft}, NextStatuses(StatusInReview))
	assert.Equal(t, []Status{StatusDraft}, NextStatuses(StatusPublished))

	next := NextStatuses(StatusDraft)
	next[0] = StatusPublished
	assert.False(t, CanTransition(StatusDraft, StatusPublished), "returned slice must be a copy")
}

func TestPublishedAtAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	got := PublishedAtAfter(nil, StatusPublished, now)
	require.NotNil(t, got)
	assert.Equal(t, now, *got)

	got = PublishedAtAfter(&earlier, StatusDraft, now)
	require.NotNil(t, got)
	assert.Equal(t, earlier, *got, "leaving published keeps the timestamp")

	got = PublishedAtAfter(&earlier, StatusPublished, now)
	assert.Equal(t, earlier, *got, "republishing keeps the first publish time")

	assert.Nil(t, PublishedAtAfter(nil, StatusInReview, now))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in_review")
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, s)

	_, err = ParseStatus("live")
	assert.ErrorIs(t, err, errors.ErrValidationFailed)
}

func TestParseEntityType(t *testing.T) {
	e, err := ParseEntityType("terminal")
	require.NoError(t, err)
	assert.Equal(t, EntityTerminal, e)

	_, err = ParseEntityType("fare")
	assert.ErrorIs(t, err, errors.ErrValidationFailed)
}
