package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/google/uuid"
)

type eventRepo struct{ t *tx }

func (r eventRepo) Append(ctx context.Context, e domain.WorkflowEvent) (string, error) {
	if err := r.t.checkWrite("workflow_events"); err != nil {
		return "", err
	}
	e.ID = uuid.NewString()
	e.EntityID = strings.Clone(e.EntityID)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.t.now
	}
	r.t.state.events = append(r.t.state.events, e)
	return e.ID, nil
}

// ListByEntity returns the entity's history oldest first.
func (r eventRepo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.WorkflowEvent, error) {
	var out []domain.WorkflowEvent
	for _, e := range r.t.state.events {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type operatorRepo struct{ t *tx }

func (r operatorRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Operator, error) {
	out := make([]domain.Operator, 0, len(ids))
	for _, id := range ids {
		if op, ok := r.t.state.operators[id]; ok {
			out = append(out, op)
		}
	}
	return out, nil
}

type statsRepo struct{ t *tx }

func (r statsRepo) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	s := r.t.state
	stats := &domain.Statistics{
		Routes:    domain.NewStatusCounts(),
		Stops:     domain.NewStatusCounts(),
		Terminals: domain.NewStatusCounts(),
	}

	var last time.Time
	touch := func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}
	for _, route := range s.routes {
		stats.Routes.Add(route.Status, 1)
		touch(route.UpdatedAt)
	}
	for _, st := range s.stops {
		stats.Stops.Add(st.Status, 1)
		touch(st.UpdatedAt)
	}
	for _, term := range s.terminals {
		stats.Terminals.Add(term.Status, 1)
		touch(term.UpdatedAt)
	}
	if last.IsZero() {
		last = r.t.now
	}
	stats.LastUpdated = last
	return stats, nil
}
