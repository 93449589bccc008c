package usecase

import (
	"context"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/logger"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"go.uber.org/zap"
)

const defaultPickerLimit = 20

// EditorUseCase serves the dashboard: editor views of routes, and the stop
// and terminal forms.
type EditorUseCase struct {
	store    repository.Store
	wards    *WardResolver
	notifier repository.ChangeNotifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewEditorUseCase(
	store repository.Store,
	wards *WardResolver,
	notifier repository.ChangeNotifier,
	logger *zap.Logger,
) *EditorUseCase {
	return &EditorUseCase{
		store:    store,
		wards:    wards,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *EditorUseCase) ListRoutes(ctx context.Context, actor domain.Actor, filter repository.ContentFilter) ([]domain.Route, error) {
	var routes []domain.Route
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		var err error
		routes, err = tx.Routes().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(routes), nil
}

// GetRouteEditorView loads the route with everything a save would replace.
func (uc *EditorUseCase) GetRouteEditorView(ctx context.Context, actor domain.Actor, routeID string) (*dto.RouteEditorView, error) {
	view := &dto.RouteEditorView{}
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		route, err := tx.Routes().GetByID(ctx, routeID)
		if err != nil {
			return err
		}
		view.Route = *route
		view.NextStatuses = domain.NextStatuses(route.Status)

		if view.Stops, err = tx.Stops().ListByRoute(ctx, routeID); err != nil {
			return err
		}
		if view.Fares, err = tx.Fares().ListByRoute(ctx, routeID); err != nil {
			return err
		}
		if view.Terminals, err = tx.RouteTerminals().ListByRoute(ctx, routeID); err != nil {
			return err
		}
		if view.Attachments, err = tx.Attachments().ListByRoute(ctx, routeID); err != nil {
			return err
		}
		view.Operators, err = tx.Operators().ListByIDs(ctx, route.OperatorIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	view.Stops = nonNil(view.Stops)
	view.Fares = nonNil(view.Fares)
	view.Terminals = nonNil(view.Terminals)
	view.Attachments = nonNil(view.Attachments)
	view.Operators = nonNil(view.Operators)
	return view, nil
}

// CreateStop stores a draft stop and its creation event. An empty slug is
// generated from the name.
func (uc *EditorUseCase) CreateStop(ctx context.Context, actor domain.Actor, slug string, attrs domain.StopAttrs) (string, error) {
	if slug == "" {
		slug = domain.NewStopSlug(attrs.Name)
	}
	attrs = uc.withWard(ctx, attrs)

	var id string
	err := uc.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		ids, err := tx.Stops().InsertMany(ctx, []domain.NewStop{{
			Slug:      slug,
			StopAttrs: attrs,
			Status:    domain.StatusDraft,
			CreatedBy: actor.UserRef(),
		}})
		if err != nil {
			return err
		}
		id = ids[0]
		return recordCreation(ctx, tx, actor, domain.EntityStop, id, domain.StatusDraft)
	})
	if err != nil {
		uc.logger.Warn("Failed to create stop", zap.String("slug", slug), logger.Actor(actor), zap.Error(err))
		return "", err
	}

	uc.logger.Info("Stop created", zap.String("stop_id", id), zap.String("slug", slug), logger.Actor(actor))
	uc.notifySaved(ctx, actor, domain.EntityStop, id, slug, domain.StatusDraft, nil)
	return id, nil
}

// UpdateStop rewrites the stop's attributes. A stop that is published or
// on any route keeps its coordinates.
func (uc *EditorUseCase) UpdateStop(ctx context.Context, actor domain.Actor, id string, attrs domain.StopAttrs) error {
	attrs = uc.withWard(ctx, attrs)

	var (
		stop    *domain.Stop
		related []string
	)
	err := uc.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		if stop, err = tx.Stops().GetByID(ctx, id); err != nil {
			return err
		}
		routes, err := tx.Stops().RoutesForStop(ctx, id, nil)
		if err != nil {
			return err
		}
		if (attrs.Lat == nil || attrs.Lng == nil) && (stop.Status == domain.StatusPublished || len(routes) > 0) {
			return errors.Validation(errors.Violation{Field: "coordinates", Message: "a published or routed stop must keep its coordinates"})
		}
		if err := tx.Stops().Update(ctx, id, attrs, actor.UserRef()); err != nil {
			return err
		}
		related = routeSlugs(routes)
		return nil
	})
	if err != nil {
		uc.logger.Warn("Failed to update stop", zap.String("stop_id", id), logger.Actor(actor), zap.Error(err))
		return err
	}

	uc.notifySaved(ctx, actor, domain.EntityStop, id, stop.Slug, stop.Status, related)
	return nil
}

func (uc *EditorUseCase) GetStop(ctx context.Context, actor domain.Actor, id string) (*dto.StopEditorView, error) {
	view := &dto.StopEditorView{}
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		stop, err := tx.Stops().GetByID(ctx, id)
		if err != nil {
			return err
		}
		view.Stop = *stop
		view.NextStatuses = domain.NextStatuses(stop.Status)
		view.Routes, err = tx.Stops().RoutesForStop(ctx, id, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	view.Routes = nonNil(view.Routes)
	return view, nil
}

func (uc *EditorUseCase) ListStops(ctx context.Context, actor domain.Actor, filter repository.ContentFilter) ([]domain.Stop, error) {
	var stops []domain.Stop
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		var err error
		stops, err = tx.Stops().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(stops), nil
}

// SearchStops backs the stop picker: name or ward match, sorted by name.
func (uc *EditorUseCase) SearchStops(ctx context.Context, actor domain.Actor, query string, limit int) ([]dto.StopSummary, error) {
	if limit <= 0 {
		limit = defaultPickerLimit
	}
	stops, err := uc.ListStops(ctx, actor, repository.ContentFilter{
		Query: query,
		Sort:  repository.SortByName,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.StopSummary, len(stops))
	for i, s := range stops {
		out[i] = dto.NewStopSummary(s)
	}
	return out, nil
}

func (uc *EditorUseCase) CreateTerminal(ctx context.Context, actor domain.Actor, slug string, attrs domain.TerminalAttrs) (string, error) {
	if slug == "" {
		slug = domain.NewTerminalSlug(attrs.Name)
	}
	attrs.StopAttrs = uc.withWard(ctx, attrs.StopAttrs)

	var id string
	err := uc.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		id, err = tx.Terminals().Insert(ctx, domain.NewTerminal{
			Slug:          slug,
			TerminalAttrs: attrs,
			Status:        domain.StatusDraft,
			CreatedBy:     actor.UserRef(),
		})
		if err != nil {
			return err
		}
		return recordCreation(ctx, tx, actor, domain.EntityTerminal, id, domain.StatusDraft)
	})
	if err != nil {
		uc.logger.Warn("Failed to create terminal", zap.String("slug", slug), logger.Actor(actor), zap.Error(err))
		return "", err
	}

	uc.logger.Info("Terminal created", zap.String("terminal_id", id), zap.String("slug", slug), logger.Actor(actor))
	uc.notifySaved(ctx, actor, domain.EntityTerminal, id, slug, domain.StatusDraft, nil)
	return id, nil
}

func (uc *EditorUseCase) UpdateTerminal(ctx context.Context, actor domain.Actor, id string, attrs domain.TerminalAttrs) error {
	attrs.StopAttrs = uc.withWard(ctx, attrs.StopAttrs)

	var (
		terminal *domain.Terminal
		related  []string
	)
	err := uc.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		if terminal, err = tx.Terminals().GetByID(ctx, id); err != nil {
			return err
		}
		if terminal.Status == domain.StatusPublished && (attrs.Lat == nil || attrs.Lng == nil) {
			return errors.Validation(errors.Violation{Field: "coordinates", Message: "a published terminal must keep its coordinates"})
		}
		if err := tx.Terminals().Update(ctx, id, attrs, actor.UserRef()); err != nil {
			return err
		}
		links, err := tx.Terminals().RoutesForTerminal(ctx, id, nil)
		if err != nil {
			return err
		}
		routes := make([]domain.Route, len(links))
		for i, l := range links {
			routes[i] = l.Route
		}
		related = routeSlugs(routes)
		return nil
	})
	if err != nil {
		uc.logger.Warn("Failed to update terminal", zap.String("terminal_id", id), logger.Actor(actor), zap.Error(err))
		return err
	}

	uc.notifySaved(ctx, actor, domain.EntityTerminal, id, terminal.Slug, terminal.Status, related)
	return nil
}

func (uc *EditorUseCase) GetTerminal(ctx context.Context, actor domain.Actor, id string) (*dto.TerminalEditorView, error) {
	view := &dto.TerminalEditorView{}
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		terminal, err := tx.Terminals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		view.Terminal = *terminal
		view.NextStatuses = domain.NextStatuses(terminal.Status)
		view.Routes, err = tx.Terminals().RoutesForTerminal(ctx, id, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	view.Routes = nonNil(view.Routes)
	return view, nil
}

func (uc *EditorUseCase) ListTerminals(ctx context.Context, actor domain.Actor, filter repository.ContentFilter) ([]domain.Terminal, error) {
	var terminals []domain.Terminal
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		var err error
		terminals, err = tx.Terminals().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(terminals), nil
}

// withWard geocodes the ward when the form left it empty.
func (uc *EditorUseCase) withWard(ctx context.Context, attrs domain.StopAttrs) domain.StopAttrs {
	if attrs.Ward != nil {
		return attrs
	}
	if ward, ok := uc.wards.WardFor(ctx, attrs.Lat, attrs.Lng); ok {
		attrs.Ward = &ward
	}
	return attrs
}

func (uc *EditorUseCase) notifySaved(ctx context.Context, actor domain.Actor, entityType domain.EntityType, id, slug string, status domain.Status, related []string) {
	notifyChange(ctx, uc.notifier, domain.ContentChangedEvent{
		Kind:       domain.ChangeSaved,
		EntityType: entityType,
		EntityID:   id,
		Slug:       slug,
		Related:    related,
		ToStatus:   &status,
		Actor:      actor.UserID,
		OccurredAt: uc.now(),
	}, uc.logger)
}

// nonNil turns a nil slice into an empty one so it renders as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
