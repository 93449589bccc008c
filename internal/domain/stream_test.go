package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentChangedEvent_AffectsPublicViews(t *testing.T) {
	draft, review, published := StatusDraft, StatusInReview, StatusPublished

	tests := []struct {
		name     string
		event    ContentChangedEvent
		expected bool
	}{
		{
			name:     "save of a draft route",
			event:    ContentChangedEvent{Kind: ChangeSaved, ToStatus: &draft},
			expected: false,
		},
		{
			name:     "save of a published route",
			event:    ContentChangedEvent{Kind: ChangeSaved, ToStatus: &published},
			expected: true,
		},
		{
			name:     "save without status",
			event:    ContentChangedEvent{Kind: ChangeSaved},
			expected: true,
		},
		{
			name:     "submit for review",
			event:    ContentChangedEvent{Kind: ChangeTransition, FromStatus: &draft, ToStatus: &review},
			expected: false,
		},
		{
			name:     "publish",
			event:    ContentChangedEvent{Kind: ChangeTransition, FromStatus: &review, ToStatus: &published},
			expected: true,
		},
		{
			name:     "unpublish",
			event:    ContentChangedEvent{Kind: ChangeTransition, FromStatus: &published, ToStatus: &draft},
			expected: true,
		},
		{
			name:     "delete",
			event:    ContentChangedEvent{Kind: ChangeDeleted, ToStatus: &draft},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.AffectsPublicViews())
		})
	}
}
