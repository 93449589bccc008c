package domain

import (
	"time"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

// Status - workflow status of a content entity
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusPublished Status = "published"
)

var AllStatuses = []Status{StatusDraft, StatusInReview, StatusPublished}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPublished:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errors.Validation(errors.Violation{Field: "status", Message: "must be one of draft, in_review, published"})
	}
	return st, nil
}

// EntityType - kind of content governed by the workflow
type EntityType string

const (
	EntityRoute    EntityType = "route"
	EntityStop     EntityType = "stop"
	EntityTerminal EntityType = "terminal"
)

func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityRoute, EntityStop, EntityTerminal:
		return EntityType(s), nil
	}
	return "", errors.Validation(errors.Violation{Field: "entity_type", Message: "must be one of route, stop, terminal"})
}

// transitions is the complete edge table. Every publish passes through review.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusInReview},
	StatusInReview:  {StatusPublished, StatusDraft},
	StatusPublished: {StatusDraft},
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition returns InvalidTransition naming the edge when from -> to is not permitted.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return errors.InvalidTransition(string(from), string(to))
	}
	return nil
}

// WorkflowEvent - append-only audit record of a status change.
// FromStatus is nil for the creation event.
type WorkflowEvent struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	FromStatus *Status    `json:"from_status"`
	ToStatus   Status     `json:"to_status"`
	Actor      *string    `json:"actor"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StatusChange - the fields a transition writes on the entity row
type StatusChange struct {
	Status      Status
	PublishedAt *time.Time
	ReviewNotes *string
	UpdatedBy   *string
	// SetReviewNotes distinguishes "leave notes as they are" from "clear notes".
	SetReviewNotes bool
}

// PublishedAtAfter returns the published_at value an entity should carry after
// moving to status to. The first publish is recorded and kept afterwards.
func PublishedAtAfter(current *time.Time, to Status, now time.Time) *time.Time {
	if to == StatusPublished && current == nil {
		t := now
		return &t
	}
	return current
}
