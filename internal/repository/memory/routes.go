package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
)

type routeRepo struct{ t *tx }

func (r routeRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	route, ok := r.t.state.routes[id]
	if !ok {
		return nil, errors.NotFound("route", id)
	}
	out := cloneRoute(route)
	return &out, nil
}

func (r routeRepo) GetBySlug(ctx context.Context, slug string) (*domain.Route, error) {
	for _, route := range r.t.state.routes {
		if route.Slug == slug {
			out := cloneRoute(route)
			return &out, nil
		}
	}
	return nil, errors.NotFound("route", slug)
}

func (r routeRepo) LockByID(ctx context.Context, id string) (*domain.Route, error) {
	return r.GetByID(ctx, id)
}

func (r routeRepo) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Route, error) {
	out := make([]domain.Route, 0, len(r.t.state.routes))
	for _, route := range r.t.state.routes {
		if !r.t.state.routeMatches(route, filter) {
			continue
		}
		out = append(out, cloneRoute(route))
	}

	if filter.Sort == repository.SortByUpdated {
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (s *state) routeMatches(route domain.Route, f repository.ContentFilter) bool {
	if f.Status != nil && route.Status != *f.Status {
		return false
	}
	if f.Query != "" && !containsFold(route.DisplayName, f.Query) {
		return false
	}
	if f.CreatedBy != "" && (route.CreatedBy == nil || *route.CreatedBy != f.CreatedBy) {
		return false
	}
	if f.OperatorID != "" && !containsString(route.OperatorIDs, f.OperatorID) {
		return false
	}
	if f.TerminalID != "" {
		linked := false
		for _, l := range s.routeTerminals[route.ID] {
			if l.TerminalID == f.TerminalID {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	return true
}

func (r routeRepo) Insert(ctx context.Context, fields domain.RouteFields, actor *string) (string, error) {
	if err := r.t.checkWrite("routes"); err != nil {
		return "", err
	}
	if err := r.t.checkRouteFields(fields, ""); err != nil {
		return "", err
	}

	route := domain.Route{
		ID:        uuid.NewString(),
		Status:    domain.StatusDraft,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: r.t.now,
		UpdatedAt: r.t.now,
	}
	applyRouteFields(&route, fields)
	r.t.state.routes[route.ID] = route
	return route.ID, nil
}

func (r routeRepo) Update(ctx context.Context, id string, fields domain.RouteFields, actor *string) error {
	if err := r.t.checkWrite("routes"); err != nil {
		return err
	}
	route, ok := r.t.state.routes[id]
	if !ok {
		return errors.NotFound("route", id)
	}
	if err := r.t.checkRouteFields(fields, id); err != nil {
		return err
	}

	applyRouteFields(&route, fields)
	route.UpdatedBy = actor
	route.UpdatedAt = r.t.now
	r.t.state.routes[route.ID] = route
	return nil
}

func (r routeRepo) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	if err := r.t.checkWrite("routes"); err != nil {
		return err
	}
	route, ok := r.t.state.routes[id]
	if !ok {
		return errors.NotFound("route", id)
	}
	route.Status = change.Status
	route.PublishedAt = change.PublishedAt
	if change.SetReviewNotes {
		route.ReviewNotes = change.ReviewNotes
	}
	route.UpdatedBy = change.UpdatedBy
	route.UpdatedAt = r.t.now
	r.t.state.routes[route.ID] = route
	return nil
}

// Delete cascades to the route's links, fares and attachments. Workflow
// events are kept as history.
func (r routeRepo) Delete(ctx context.Context, id string) error {
	if err := r.t.checkWrite("routes"); err != nil {
		return err
	}
	if _, ok := r.t.state.routes[id]; !ok {
		return errors.NotFound("route", id)
	}
	s := r.t.state
	delete(s.routes, id)
	delete(s.routeStops, id)
	delete(s.routeTerminals, id)
	delete(s.fares, id)
	for aid, a := range s.attachments {
		if a.RouteID == id {
			delete(s.attachments, aid)
		}
	}
	return nil
}

func (t *tx) checkRouteFields(f domain.RouteFields, exceptID string) error {
	s := t.state
	if s.routeSlugTaken(f.Slug, exceptID) {
		return conflict("routes_slug_key")
	}
	for _, ref := range []struct {
		id         *string
		constraint string
	}{
		{f.StartStopID, "routes_start_stop_id_fkey"},
		{f.EndStopID, "routes_end_stop_id_fkey"},
	} {
		if ref.id == nil {
			continue
		}
		if _, ok := s.stops[*ref.id]; !ok {
			return foreignKey(ref.constraint)
		}
	}
	for _, ref := range []struct {
		id         *string
		constraint string
	}{
		{f.OriginTerminalID, "routes_origin_terminal_id_fkey"},
		{f.DestinationTerminalID, "routes_destination_terminal_id_fkey"},
	} {
		if ref.id == nil {
			continue
		}
		if _, ok := s.terminals[*ref.id]; !ok {
			return foreignKey(ref.constraint)
		}
	}
	return nil
}

func applyRouteFields(route *domain.Route, f domain.RouteFields) {
	route.Slug = f.Slug
	route.DisplayName = f.DisplayName
	route.Color = f.Color
	route.Corridors = append([]string{}, f.Corridors...)
	route.OperatorIDs = append([]string{}, f.OperatorIDs...)
	route.EstBuses = f.EstBuses
	route.Hours = f.Hours
	route.Notes = f.Notes
	route.ReviewNotes = f.ReviewNotes
	route.StartStopID = f.StartStopID
	route.EndStopID = f.EndStopID
	route.OriginTerminalID = f.OriginTerminalID
	route.DestinationTerminalID = f.DestinationTerminalID
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
