package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/logger"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"go.uber.org/zap"
)

// TransitionInput - requested workflow move
type TransitionInput struct {
	To    domain.Status
	Notes *string
	// ReviewNotes, when set, replaces a route's review notes together with
	// the status. Stops and terminals have no review notes.
	ReviewNotes *string
}

// WorkflowUseCase moves routes, stops and terminals between draft,
// in_review and published, recording every move.
type WorkflowUseCase struct {
	store    repository.Store
	notifier repository.ChangeNotifier
	metrics  *metrics.Registry
	logger   *zap.Logger
	now      func() time.Time
}

func NewWorkflowUseCase(
	store repository.Store,
	notifier repository.ChangeNotifier,
	metrics *metrics.Registry,
	logger *zap.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// entityState - what a transition needs to know about its target
type entityState struct {
	slug        string
	status      domain.Status
	publishedAt *time.Time
	related     []string
}

// Transition applies one edge of the workflow. The status change and its
// event are written in one transaction; a rejected move writes neither.
func (uc *WorkflowUseCase) Transition(ctx context.Context, actor domain.Actor, entityType domain.EntityType, entityID string, in TransitionInput) (*domain.WorkflowEvent, error) {
	if !in.To.Valid() {
		return nil, errors.Validation(errors.Violation{Field: "to", Message: "must be one of draft, in_review, published"})
	}

	var (
		state *entityState
		event domain.WorkflowEvent
	)
	err := uc.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		state, err = uc.load(ctx, tx, entityType, entityID, true)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(state.status, in.To); err != nil {
			return err
		}
		if in.To == domain.StatusPublished {
			if err := checkPublishable(ctx, tx, entityType, entityID); err != nil {
				return err
			}
		}

		change := domain.StatusChange{
			Status:      in.To,
			PublishedAt: domain.PublishedAtAfter(state.publishedAt, in.To, uc.now()),
			UpdatedBy:   actor.UserRef(),
		}
		if entityType == domain.EntityRoute && in.ReviewNotes != nil {
			change.ReviewNotes = trimmedNotes(in.ReviewNotes)
			change.SetReviewNotes = true
		}
		if err := setStatus(ctx, tx, entityType, entityID, change); err != nil {
			return err
		}

		from := state.status
		event = domain.WorkflowEvent{
			EntityType: entityType,
			EntityID:   entityID,
			FromStatus: &from,
			ToStatus:   in.To,
			Actor:      actor.UserRef(),
			Notes:      trimmedNotes(in.Notes),
		}
		if event.ID, err = tx.WorkflowEvents().Append(ctx, event); err != nil {
			return err
		}
		event.CreatedAt = uc.now()
		return nil
	})

	from := ""
	if state != nil {
		from = string(state.status)
	}
	uc.metrics.ObserveTransition(string(entityType), from, string(in.To), err)
	if err != nil {
		uc.logger.Warn("Workflow transition rejected",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.String("from", from),
			zap.String("to", string(in.To)),
			logger.Actor(actor),
			zap.Error(err),
		)
		return nil, err
	}

	uc.logger.Info("Workflow transition applied",
		zap.String("entity_type", string(entityType)),
		zap.String("entity_id", entityID),
		zap.String("from", from),
		zap.String("to", string(in.To)),
		logger.Actor(actor),
	)

	fromStatus, toStatus := state.status, in.To
	notifyChange(ctx, uc.notifier, domain.ContentChangedEvent{
		Kind:       domain.ChangeTransition,
		EntityType: entityType,
		EntityID:   entityID,
		Slug:       state.slug,
		Related:    state.related,
		FromStatus: &fromStatus,
		ToStatus:   &toStatus,
		Actor:      actor.UserID,
		OccurredAt: uc.now(),
	}, uc.logger)
	return &event, nil
}

// History lists the entity's workflow events oldest first.
func (uc *WorkflowUseCase) History(ctx context.Context, actor domain.Actor, entityType domain.EntityType, entityID string) ([]domain.WorkflowEvent, error) {
	var events []domain.WorkflowEvent
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		if _, err := uc.load(ctx, tx, entityType, entityID, false); err != nil {
			return err
		}
		var err error
		events, err = tx.WorkflowEvents().ListByEntity(ctx, entityType, entityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.WorkflowEvent{}
	}
	return events, nil
}

// AvailableTransitions lists the statuses the entity can move to next.
func (uc *WorkflowUseCase) AvailableTransitions(ctx context.Context, actor domain.Actor, entityType domain.EntityType, entityID string) ([]domain.Status, error) {
	var state *entityState
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		var err error
		state, err = uc.load(ctx, tx, entityType, entityID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(state.status), nil
}

// load reads the entity's current status. forUpdate locks a route row and
// collects the slugs of linked entities for the change notification.
func (uc *WorkflowUseCase) load(ctx context.Context, tx repository.Tx, entityType domain.EntityType, id string, forUpdate bool) (*entityState, error) {
	switch entityType {
	case domain.EntityRoute:
		var (
			route *domain.Route
			err   error
		)
		if forUpdate {
			route, err = tx.Routes().LockByID(ctx, id)
		} else {
			route, err = tx.Routes().GetByID(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		state := &entityState{slug: route.Slug, status: route.Status, publishedAt: route.PublishedAt}
		if forUpdate {
			related := newSlugSet()
			if err := collectLinkedSlugs(ctx, tx, id, related); err != nil {
				return nil, err
			}
			state.related = related.list()
		}
		return state, nil

	case domain.EntityStop:
		stop, err := tx.Stops().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		state := &entityState{slug: stop.Slug, status: stop.Status, publishedAt: stop.PublishedAt}
		if forUpdate {
			routes, err := tx.Stops().RoutesForStop(ctx, id, nil)
			if err != nil {
				return nil, err
			}
			state.related = routeSlugs(routes)
		}
		return state, nil

	case domain.EntityTerminal:
		terminal, err := tx.Terminals().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		state := &entityState{slug: terminal.Slug, status: terminal.Status, publishedAt: terminal.PublishedAt}
		if forUpdate {
			links, err := tx.Terminals().RoutesForTerminal(ctx, id, nil)
			if err != nil {
				return nil, err
			}
			routes := make([]domain.Route, len(links))
			for i, l := range links {
				routes[i] = l.Route
			}
			state.related = routeSlugs(routes)
		}
		return state, nil
	}
	_, err := domain.ParseEntityType(string(entityType))
	return nil, err
}

// checkPublishable enforces what a published entity must satisfy.
func checkPublishable(ctx context.Context, tx repository.Tx, entityType domain.EntityType, id string) error {
	switch entityType {
	case domain.EntityRoute:
		route, err := tx.Routes().GetByID(ctx, id)
		if err != nil {
			return err
		}
		links, err := tx.RouteStops().ListByRoute(ctx, id)
		if err != nil {
			return err
		}
		return route.CheckPublishable(links)
	case domain.EntityStop:
		stop, err := tx.Stops().GetByID(ctx, id)
		if err != nil {
			return err
		}
		return stop.CheckPublishable()
	case domain.EntityTerminal:
		terminal, err := tx.Terminals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		return terminal.CheckPublishable()
	}
	return nil
}

func setStatus(ctx context.Context, tx repository.Tx, entityType domain.EntityType, id string, change domain.StatusChange) error {
	switch entityType {
	case domain.EntityRoute:
		return tx.Routes().SetStatus(ctx, id, change)
	case domain.EntityStop:
		return tx.Stops().SetStatus(ctx, id, change)
	case domain.EntityTerminal:
		return tx.Terminals().SetStatus(ctx, id, change)
	}
	return nil
}

// recordCreation writes the first event of an entity, the one without a
// prior status.
func recordCreation(ctx context.Context, tx repository.Tx, actor domain.Actor, entityType domain.EntityType, id string, status domain.Status) error {
	_, err := tx.WorkflowEvents().Append(ctx, domain.WorkflowEvent{
		EntityType: entityType,
		EntityID:   id,
		ToStatus:   status,
		Actor:      actor.UserRef(),
	})
	return err
}

func routeSlugs(routes []domain.Route) []string {
	set := newSlugSet()
	for _, r := range routes {
		set.add(r.Slug)
	}
	return set.list()
}

func trimmedNotes(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.NullableString(strings.TrimSpace(*s))
}
