package domain

import "time"

// Stream names
const (
	StreamContentChanged = "stream:content:changed"
)

// Content change kinds
const (
	ChangeSaved      = "content.saved"
	ChangeTransition = "workflow.transition"
	ChangeDeleted    = "content.deleted"
)

// ContentChangedEvent - published after a committed write so readers can
// drop stale public views. Published only after commit; never part of the write.
type ContentChangedEvent struct {
	Kind       string     `json:"kind"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Slug       string     `json:"slug,omitempty"`
	// PreviousSlug is set when a save renamed the entity.
	PreviousSlug string `json:"previous_slug,omitempty"`
	// Related lists slugs of linked entities whose public views embed this one
	// (stops and terminals of a saved route, routes of a saved stop).
	Related    []string  `json:"related,omitempty"`
	FromStatus *Status   `json:"from_status,omitempty"`
	ToStatus   *Status   `json:"to_status,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AffectsPublicViews reports whether readers of published content may see a difference.
// A save carries the entity's current status in ToStatus.
func (e *ContentChangedEvent) AffectsPublicViews() bool {
	if e.Kind == ChangeDeleted {
		return true
	}
	from, to := e.FromStatus, e.ToStatus
	if from == nil && to == nil {
		return true
	}
	return (from != nil && *from == StatusPublished) || (to != nil && *to == StatusPublished)
}

// StreamMessage - message read from a Redis stream
type StreamMessage struct {
	ID   string
	Data string
}
