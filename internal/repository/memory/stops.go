package memory

import (
	"context"
	"sort"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
)

type stopRepo struct{ t *tx }

func (r stopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	st, ok := r.t.state.stops[id]
	if !ok {
		return nil, errors.NotFound("stop", id)
	}
	out := cloneStop(st)
	return &out, nil
}

func (r stopRepo) GetBySlug(ctx context.Context, slug string) (*domain.Stop, error) {
	for _, st := range r.t.state.stops {
		if st.Slug == slug {
			out := cloneStop(st)
			return &out, nil
		}
	}
	return nil, errors.NotFound("stop", slug)
}

func (r stopRepo) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Stop, error) {
	out := make([]domain.Stop, 0, len(r.t.state.stops))
	for _, st := range r.t.state.stops {
		if filter.Status != nil && st.Status != *filter.Status {
			continue
		}
		if filter.Query != "" && !containsFold(st.Name, filter.Query) &&
			!(st.Ward != nil && containsFold(*st.Ward, filter.Query)) {
			continue
		}
		if filter.CreatedBy != "" && (st.CreatedBy == nil || *st.CreatedBy != filter.CreatedBy) {
			continue
		}
		out = append(out, cloneStop(st))
	}

	if filter.Sort == repository.SortByUpdated {
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

// ListByIDs returns the stops that exist, in the order of ids.
func (r stopRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Stop, error) {
	out := make([]domain.Stop, 0, len(ids))
	for _, id := range ids {
		if st, ok := r.t.state.stops[id]; ok {
			out = append(out, cloneStop(st))
		}
	}
	return out, nil
}

func (r stopRepo) InsertMany(ctx context.Context, stops []domain.NewStop) ([]string, error) {
	if len(stops) == 0 {
		return nil, nil
	}
	if err := r.t.checkWrite("stops"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stops))
	for _, ns := range stops {
		if r.t.state.stopSlugTaken(ns.Slug) {
			return nil, conflict("stops_slug_key")
		}
		status := ns.Status
		if status == "" {
			status = domain.StatusDraft
		}
		st := domain.Stop{
			ID:          uuid.NewString(),
			Slug:        ns.Slug,
			Name:        ns.Name,
			NameAliases: append([]string{}, ns.NameAliases...),
			Lat:         ns.Lat,
			Lng:         ns.Lng,
			Ward:        ns.Ward,
			Description: ns.Description,
			Status:      status,
			CreatedBy:   ns.CreatedBy,
			UpdatedBy:   ns.CreatedBy,
			CreatedAt:   r.t.now,
			UpdatedAt:   r.t.now,
		}
		if status == domain.StatusPublished {
			st.PublishedAt = domain.PublishedAtAfter(nil, status, r.t.now)
		}
		r.t.state.stops[st.ID] = st
		ids = append(ids, st.ID)
	}
	return ids, nil
}

func (r stopRepo) Update(ctx context.Context, id string, attrs domain.StopAttrs, actor *string) error {
	if err := r.t.checkWrite("stops"); err != nil {
		return err
	}
	st, ok := r.t.state.stops[id]
	if !ok {
		return errors.NotFound("stop", id)
	}
	st.Name = attrs.Name
	st.NameAliases = append([]string{}, attrs.NameAliases...)
	st.Lat = attrs.Lat
	st.Lng = attrs.Lng
	st.Ward = attrs.Ward
	st.Description = attrs.Description
	st.UpdatedBy = actor
	st.UpdatedAt = r.t.now
	r.t.state.stops[st.ID] = st
	return nil
}

func (r stopRepo) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	if err := r.t.checkWrite("stops"); err != nil {
		return err
	}
	st, ok := r.t.state.stops[id]
	if !ok {
		return errors.NotFound("stop", id)
	}
	st.Status = change.Status
	st.PublishedAt = change.PublishedAt
	st.UpdatedBy = change.UpdatedBy
	st.UpdatedAt = r.t.now
	r.t.state.stops[st.ID] = st
	return nil
}

// Delete refuses stops still referenced by a route, its fares or its endpoints.
func (r stopRepo) Delete(ctx context.Context, id string) error {
	if err := r.t.checkWrite("stops"); err != nil {
		return err
	}
	if _, ok := r.t.state.stops[id]; !ok {
		return errors.NotFound("stop", id)
	}
	if r.t.state.stopReferenced(id) {
		return stillReferenced("route_stops_stop_id_fkey")
	}
	delete(r.t.state.stops, id)
	return nil
}

func (r stopRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.OrderedStop, error) {
	links := append([]domain.RouteStop(nil), r.t.state.routeStops[routeID]...)
	domain.SortBySeq(links)

	out := make([]domain.OrderedStop, 0, len(links))
	for _, l := range links {
		st, ok := r.t.state.stops[l.StopID]
		if !ok {
			continue
		}
		out = append(out, domain.OrderedStop{Seq: l.Seq, Stop: cloneStop(st)})
	}
	return out, nil
}

func (r stopRepo) RoutesForStop(ctx context.Context, stopID string, status *domain.Status) ([]domain.Route, error) {
	var out []domain.Route
	for routeID, links := range r.t.state.routeStops {
		route, ok := r.t.state.routes[routeID]
		if !ok || (status != nil && route.Status != *status) {
			continue
		}
		for _, l := range links {
			if l.StopID == stopID {
				out = append(out, cloneRoute(route))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}
