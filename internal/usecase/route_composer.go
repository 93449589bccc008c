package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/logger"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"go.uber.org/zap"
)

// Sub-resources of a route save, reported on failure
const (
	StepValidate    = "validate"
	StepStops       = "stops"
	StepRoute       = "route"
	StepRouteStops  = "route_stops"
	StepTerminals   = "terminals"
	StepFares       = "fares"
	StepAttachments = "attachments"
)

// RouteComposer persists a route together with its stops, terminal links,
// fares and attachments as one atomic save.
type RouteComposer struct {
	store    repository.Store
	wards    *WardResolver
	notifier repository.ChangeNotifier
	metrics  *metrics.Registry
	logger   *zap.Logger
	now      func() time.Time
}

func NewRouteComposer(
	store repository.Store,
	wards *WardResolver,
	notifier repository.ChangeNotifier,
	metrics *metrics.Registry,
	logger *zap.Logger,
) *RouteComposer {
	return &RouteComposer{
		store:    store,
		wards:    wards,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type savedRoute struct {
	id           string
	slug         string
	previousSlug string
	status       domain.Status
	related      []string
}

// SaveRoute creates the route when existingID is nil and replaces it
// otherwise. Either every part of the draft is stored or nothing is; a
// failure in the store comes back as *errors.StepError naming the part.
func (c *RouteComposer) SaveRoute(ctx context.Context, actor domain.Actor, existingID *string, draft domain.RouteDraft) (string, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		c.metrics.ObserveSave(StepValidate, err)
		return "", err
	}

	// Geocoding runs before the transaction so no row lock waits on the network.
	draft.Stops = c.wards.Enrich(ctx, draft.Stops)

	var saved *savedRoute
	err := c.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		saved, err = c.save(ctx, tx, actor, existingID, draft)
		return err
	})
	if err != nil {
		step := stepOf(err)
		c.metrics.ObserveSave(step, err)
		c.logger.Warn("Route save rolled back",
			zap.String("slug", draft.Slug),
			zap.String("step", step),
			logger.Actor(actor),
			zap.Error(err),
		)
		return "", err
	}
	c.metrics.ObserveSave("", nil)

	c.logger.Info("Route saved",
		zap.String("route_id", saved.id),
		zap.String("slug", saved.slug),
		zap.Int("stops", len(draft.Stops)),
		zap.Int("fares", len(draft.Fares)),
		logger.Actor(actor),
	)

	status := saved.status
	c.notify(ctx, domain.ContentChangedEvent{
		Kind:         domain.ChangeSaved,
		EntityType:   domain.EntityRoute,
		EntityID:     saved.id,
		Slug:         saved.slug,
		PreviousSlug: saved.previousSlug,
		Related:      saved.related,
		ToStatus:     &status,
		Actor:        actor.UserID,
		OccurredAt:   c.now(),
	})
	return saved.id, nil
}

func (c *RouteComposer) save(ctx context.Context, tx repository.Tx, actor domain.Actor, existingID *string, draft domain.RouteDraft) (*savedRoute, error) {
	out := &savedRoute{slug: draft.Slug, status: domain.StatusDraft}
	related := newSlugSet()

	var existing *domain.Route
	if existingID != nil {
		route, err := tx.Routes().LockByID(ctx, *existingID)
		if err != nil {
			return nil, errors.AtStep(StepRoute, err)
		}
		existing = route
		out.status = route.Status
		if route.Slug != draft.Slug {
			out.previousSlug = route.Slug
		}
		if err := collectLinkedSlugs(ctx, tx, route.ID, related); err != nil {
			return nil, errors.AtStep(StepRoute, err)
		}
	}

	// 1-2. Create pending stops in one statement and bind their local keys.
	resolution := domain.NewStopResolution(draft.Stops)
	var (
		pending []domain.NewStop
		keys    []string
	)
	for _, ref := range draft.Stops {
		attrs, ok := ref.Attrs()
		if !ok {
			continue
		}
		pending = append(pending, domain.NewStop{
			Slug:      domain.NewStopSlug(attrs.Name),
			StopAttrs: attrs,
			Status:    domain.StatusDraft,
			CreatedBy: actor.UserRef(),
		})
		keys = append(keys, ref.LocalKey())
	}
	if len(pending) > 0 {
		ids, err := tx.Stops().InsertMany(ctx, pending)
		if err != nil {
			return nil, errors.AtStep(StepStops, err)
		}
		if len(ids) != len(pending) {
			return nil, errors.AtStep(StepStops, errors.ErrDatabaseError.Wrap(
				fmt.Errorf("inserted %d stops, got %d ids", len(pending), len(ids))))
		}
		for i, id := range ids {
			resolution.Bind(keys[i], id)
		}
	}

	// 3. Every entry must map to a stored stop.
	stopIDs, err := resolution.ResolveAll(draft.Stops)
	if err != nil {
		return nil, errors.AtStep(StepStops, err)
	}
	if err := checkLinkedStops(ctx, tx, draft.Stops); err != nil {
		return nil, errors.AtStep(StepStops, err)
	}

	// 4-5. Route row with derived start and end.
	fields := domain.RouteFields{
		Slug:                  draft.Slug,
		DisplayName:           draft.DisplayName,
		Color:                 draft.Color,
		Corridors:             draft.Corridors,
		OperatorIDs:           draft.OperatorIDs,
		EstBuses:              draft.EstBuses,
		Hours:                 draft.Hours,
		Notes:                 draft.Notes,
		ReviewNotes:           draft.ReviewNotes,
		StartStopID:           domain.StringPtr(stopIDs[0]),
		EndStopID:             domain.StringPtr(stopIDs[len(stopIDs)-1]),
		OriginTerminalID:      domain.NullableString(draft.OriginTerminalID),
		DestinationTerminalID: domain.NullableString(draft.DestinationTerminalID),
	}
	if existing != nil {
		out.id = existing.ID
		if err := tx.Routes().Update(ctx, existing.ID, fields, actor.UserRef()); err != nil {
			return nil, errors.AtStep(StepRoute, err)
		}
	} else {
		id, err := tx.Routes().Insert(ctx, fields, actor.UserRef())
		if err != nil {
			return nil, errors.AtStep(StepRoute, err)
		}
		out.id = id
	}

	// 6. Ordered stop list, seq 1..N.
	if err := tx.RouteStops().DeleteByRoute(ctx, out.id); err != nil {
		return nil, errors.AtStep(StepRouteStops, err)
	}
	if err := tx.RouteStops().InsertMany(ctx, domain.SequenceStops(out.id, stopIDs)); err != nil {
		return nil, errors.AtStep(StepRouteStops, err)
	}

	// 7. Origin and terminus links follow the draft; through links are
	// managed separately and stay.
	if err := tx.RouteTerminals().DeleteByRoute(ctx, out.id, domain.TerminalOrigin, domain.TerminalTerminus); err != nil {
		return nil, errors.AtStep(StepTerminals, err)
	}
	var links []domain.RouteTerminal
	if fields.OriginTerminalID != nil {
		links = append(links, domain.RouteTerminal{RouteID: out.id, TerminalID: *fields.OriginTerminalID, Role: domain.TerminalOrigin})
	}
	if fields.DestinationTerminalID != nil {
		links = append(links, domain.RouteTerminal{RouteID: out.id, TerminalID: *fields.DestinationTerminalID, Role: domain.TerminalTerminus})
	}
	if err := tx.RouteTerminals().InsertMany(ctx, links); err != nil {
		return nil, errors.AtStep(StepTerminals, err)
	}

	// 8. Fares, endpoints translated through the same mapping.
	fares := make([]domain.Fare, 0, len(draft.Fares))
	for _, f := range draft.Fares {
		from, err := resolution.ResolveFareRef(f.FromRef)
		if err != nil {
			return nil, errors.AtStep(StepFares, err)
		}
		to, err := resolution.ResolveFareRef(f.ToRef)
		if err != nil {
			return nil, errors.AtStep(StepFares, err)
		}
		fares = append(fares, domain.Fare{
			RouteID:       out.id,
			FromStopID:    from,
			ToStopID:      to,
			PassengerType: f.PassengerType,
			Price:         f.Price,
			Note:          f.Note,
		})
	}
	if err := tx.Fares().DeleteByRoute(ctx, out.id); err != nil {
		return nil, errors.AtStep(StepFares, err)
	}
	if err := tx.Fares().InsertMany(ctx, fares); err != nil {
		return nil, errors.AtStep(StepFares, err)
	}

	// 9. Attachments.
	plan := domain.PlanAttachments(out.id, draft.Attachments, actor.UserRef())
	if err := tx.Attachments().DeleteMany(ctx, out.id, plan.Delete); err != nil {
		return nil, errors.AtStep(StepAttachments, err)
	}
	if _, err := tx.Attachments().InsertMany(ctx, plan.Insert); err != nil {
		return nil, errors.AtStep(StepAttachments, err)
	}
	for _, u := range plan.Update {
		if err := tx.Attachments().UpdateMeta(ctx, out.id, u); err != nil {
			return nil, errors.AtStep(StepAttachments, err)
		}
	}

	if err := collectLinkedSlugs(ctx, tx, out.id, related); err != nil {
		return nil, errors.AtStep(StepRoute, err)
	}
	out.related = related.list()
	return out, nil
}

// SetThroughTerminals replaces the route's through links. Origin and
// terminus links are left to SaveRoute.
func (c *RouteComposer) SetThroughTerminals(ctx context.Context, actor domain.Actor, routeID string, links []domain.RouteTerminal) error {
	seen := make(map[string]bool, len(links))
	rows := make([]domain.RouteTerminal, 0, len(links))
	for i, l := range links {
		if seen[l.TerminalID] {
			return errors.Validation(errors.Violation{
				Field:   fmt.Sprintf("terminals[%d]", i),
				Message: "terminal already listed",
			})
		}
		seen[l.TerminalID] = true
		rows = append(rows, domain.RouteTerminal{RouteID: routeID, TerminalID: l.TerminalID, Role: domain.TerminalThrough, Notes: l.Notes})
	}

	var route *domain.Route
	related := newSlugSet()
	err := c.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		route, err = tx.Routes().LockByID(ctx, routeID)
		if err != nil {
			return errors.AtStep(StepRoute, err)
		}
		if err := collectLinkedSlugs(ctx, tx, routeID, related); err != nil {
			return errors.AtStep(StepTerminals, err)
		}
		if err := tx.RouteTerminals().DeleteByRoute(ctx, routeID, domain.TerminalThrough); err != nil {
			return errors.AtStep(StepTerminals, err)
		}
		if err := tx.RouteTerminals().InsertMany(ctx, rows); err != nil {
			return errors.AtStep(StepTerminals, err)
		}
		return errors.AtStep(StepTerminals, collectLinkedSlugs(ctx, tx, routeID, related))
	})
	if err != nil {
		c.logger.Warn("Failed to set through terminals", zap.String("route_id", routeID), logger.Actor(actor), zap.Error(err))
		return err
	}

	status := route.Status
	c.notify(ctx, domain.ContentChangedEvent{
		Kind:       domain.ChangeSaved,
		EntityType: domain.EntityRoute,
		EntityID:   routeID,
		Slug:       route.Slug,
		Related:    related.list(),
		ToStatus:   &status,
		Actor:      actor.UserID,
		OccurredAt: c.now(),
	})
	return nil
}

// DeleteRoute removes the route with its links, fares and attachments.
// Stops and terminals stay; workflow history is kept.
func (c *RouteComposer) DeleteRoute(ctx context.Context, actor domain.Actor, routeID string) error {
	var route *domain.Route
	related := newSlugSet()
	err := c.store.WithinTx(ctx, actor, func(tx repository.Tx) error {
		var err error
		route, err = tx.Routes().LockByID(ctx, routeID)
		if err != nil {
			return err
		}
		if err := collectLinkedSlugs(ctx, tx, routeID, related); err != nil {
			return err
		}
		return tx.Routes().Delete(ctx, routeID)
	})
	if err != nil {
		c.logger.Warn("Failed to delete route", zap.String("route_id", routeID), logger.Actor(actor), zap.Error(err))
		return err
	}

	c.logger.Info("Route deleted", zap.String("route_id", routeID), zap.String("slug", route.Slug), logger.Actor(actor))
	c.notify(ctx, domain.ContentChangedEvent{
		Kind:       domain.ChangeDeleted,
		EntityType: domain.EntityRoute,
		EntityID:   routeID,
		Slug:       route.Slug,
		Related:    related.list(),
		Actor:      actor.UserID,
		OccurredAt: c.now(),
	})
	return nil
}

func (c *RouteComposer) notify(ctx context.Context, event domain.ContentChangedEvent) {
	notifyChange(ctx, c.notifier, event, c.logger)
}

// notifyChange publishes after commit. The write is already durable, so a
// failed publish is only logged.
func notifyChange(ctx context.Context, notifier repository.ChangeNotifier, event domain.ContentChangedEvent, log *zap.Logger) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyChange(ctx, event); err != nil {
		log.Warn("Failed to publish content change",
			zap.String("kind", event.Kind),
			zap.String("entity_type", string(event.EntityType)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}

// collectLinkedSlugs adds the slugs of the route's stops and terminals.
func collectLinkedSlugs(ctx context.Context, tx repository.Tx, routeID string, into slugSet) error {
	stops, err := tx.Stops().ListByRoute(ctx, routeID)
	if err != nil {
		return err
	}
	for _, s := range stops {
		into.add(s.Stop.Slug)
	}

	links, err := tx.RouteTerminals().ListByRoute(ctx, routeID)
	if err != nil {
		return err
	}
	for _, l := range links {
		t, err := tx.Terminals().GetByID(ctx, l.TerminalID)
		if err != nil {
			return err
		}
		into.add(t.Slug)
	}
	return nil
}

func stepOf(err error) string {
	step, _ := errors.StepOf(err)
	return step
}

type slugSet map[string]struct{}

func newSlugSet() slugSet {
	return make(slugSet)
}

func (s slugSet) add(slug string) {
	if slug != "" {
		s[slug] = struct{}{}
	}
}

// list returns the slugs sorted.
func (s slugSet) list() []string {
	out := make([]string, 0, len(s))
	for slug := range s {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// checkLinkedStops loads the draft's persisted entries. A route links only
// stops that exist and have coordinates.
func checkLinkedStops(ctx context.Context, tx repository.Tx, refs []domain.StopRef) error {
	var ids []string
	for _, ref := range refs {
		if id, ok := ref.PersistedID(); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	stops, err := tx.Stops().ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Stop, len(stops))
	for _, st := range stops {
		byID[st.ID] = st
	}

	var violations []errors.Violation
	for i, ref := range refs {
		id, ok := ref.PersistedID()
		if !ok {
			continue
		}
		st, found := byID[id]
		if !found {
			return errors.UnresolvedReference("stop", id)
		}
		if st.Lat == nil || st.Lng == nil {
			violations = append(violations, errors.Violation{
				Field:   fmt.Sprintf("stops[%d]", i),
				Message: fmt.Sprintf("stop %q has no coordinates", st.Slug),
			})
		}
	}
	if len(violations) > 0 {
		return errors.Validation(violations...)
	}
	return nil
}
