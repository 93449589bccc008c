package memory

import (
	"context"
	"sort"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
)

type routeStopRepo struct{ t *tx }

func (r routeStopRepo) DeleteByRoute(ctx context.Context, routeID string) error {
	if err := r.t.checkWrite("route_stops"); err != nil {
		return err
	}
	delete(r.t.state.routeStops, routeID)
	return nil
}

func (r routeStopRepo) InsertMany(ctx context.Context, links []domain.RouteStop) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.t.checkWrite("route_stops"); err != nil {
		return err
	}
	s := r.t.state
	for _, l := range links {
		if _, ok := s.routes[l.RouteID]; !ok {
			return foreignKey("route_stops_route_id_fkey")
		}
		if _, ok := s.stops[l.StopID]; !ok {
			return foreignKey("route_stops_stop_id_fkey")
		}
		for _, existing := range s.routeStops[l.RouteID] {
			if existing.Seq == l.Seq {
				return conflict("route_stops_pkey")
			}
			if existing.StopID == l.StopID {
				return conflict("route_stops_route_id_stop_id_key")
			}
		}
		l.RouteID = s.routes[l.RouteID].ID
		l.StopID = s.stops[l.StopID].ID
		s.routeStops[l.RouteID] = append(s.routeStops[l.RouteID], l)
	}
	return nil
}

func (r routeStopRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.RouteStop, error) {
	out := append([]domain.RouteStop{}, r.t.state.routeStops[routeID]...)
	domain.SortBySeq(out)
	return out, nil
}

type routeTerminalRepo struct{ t *tx }

func (r routeTerminalRepo) DeleteByRoute(ctx context.Context, routeID string, roles ...domain.TerminalRole) error {
	if err := r.t.checkWrite("route_terminals"); err != nil {
		return err
	}
	if len(roles) == 0 {
		delete(r.t.state.routeTerminals, routeID)
		return nil
	}
	drop := make(map[domain.TerminalRole]bool, len(roles))
	for _, role := range roles {
		drop[role] = true
	}
	links, ok := r.t.state.routeTerminals[routeID]
	if !ok {
		return nil
	}
	var kept []domain.RouteTerminal
	for _, l := range links {
		if !drop[l.Role] {
			kept = append(kept, l)
		}
	}
	r.t.state.routeTerminals[r.t.state.routeKey(routeID)] = kept
	return nil
}

// InsertMany allows one origin and one terminus per route, and any number
// of distinct through terminals.
func (r routeTerminalRepo) InsertMany(ctx context.Context, links []domain.RouteTerminal) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.t.checkWrite("route_terminals"); err != nil {
		return err
	}
	s := r.t.state
	for _, l := range links {
		if !l.Role.Valid() {
			return errors.Validation(errors.Violation{Field: "role", Message: "must be origin, terminus or through"})
		}
		if _, ok := s.routes[l.RouteID]; !ok {
			return foreignKey("route_terminals_route_id_fkey")
		}
		if _, ok := s.terminals[l.TerminalID]; !ok {
			return foreignKey("route_terminals_terminal_id_fkey")
		}
		for _, existing := range s.routeTerminals[l.RouteID] {
			if existing.Role != l.Role {
				continue
			}
			if l.Role != domain.TerminalThrough {
				return conflict("route_terminals_one_" + string(l.Role))
			}
			if existing.TerminalID == l.TerminalID {
				return conflict("route_terminals_pkey")
			}
		}
		l.RouteID = s.routes[l.RouteID].ID
		l.TerminalID = s.terminals[l.TerminalID].ID
		s.routeTerminals[l.RouteID] = append(s.routeTerminals[l.RouteID], l)
	}
	return nil
}

func (r routeTerminalRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.RouteTerminal, error) {
	out := append([]domain.RouteTerminal{}, r.t.state.routeTerminals[routeID]...)
	rank := map[domain.TerminalRole]int{domain.TerminalOrigin: 0, domain.TerminalThrough: 1, domain.TerminalTerminus: 2}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Role] < rank[out[j].Role] })
	return out, nil
}

type fareRepo struct{ t *tx }

func (r fareRepo) DeleteByRoute(ctx context.Context, routeID string) error {
	if err := r.t.checkWrite("fares"); err != nil {
		return err
	}
	delete(r.t.state.fares, routeID)
	return nil
}

func (r fareRepo) InsertMany(ctx context.Context, fares []domain.Fare) error {
	if len(fares) == 0 {
		return nil
	}
	if err := r.t.checkWrite("fares"); err != nil {
		return err
	}
	s := r.t.state
	for _, f := range fares {
		if _, ok := s.routes[f.RouteID]; !ok {
			return foreignKey("fares_route_id_fkey")
		}
		if _, ok := s.stops[f.FromStopID]; !ok {
			return foreignKey("fares_from_stop_id_fkey")
		}
		if _, ok := s.stops[f.ToStopID]; !ok {
			return foreignKey("fares_to_stop_id_fkey")
		}
		if f.Price < 0 {
			return errors.ErrValidationFailed.WithMessage("fares_price_tzs_check")
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.RouteID = s.routes[f.RouteID].ID
		f.FromStopID = s.stops[f.FromStopID].ID
		f.ToStopID = s.stops[f.ToStopID].ID
		s.fares[f.RouteID] = append(s.fares[f.RouteID], f)
	}
	return nil
}

func (r fareRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.Fare, error) {
	out := append([]domain.Fare{}, r.t.state.fares[routeID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PassengerType < out[j].PassengerType })
	return out, nil
}

type attachmentRepo struct{ t *tx }

func (r attachmentRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.t.state.attachments {
		if a.RouteID == routeID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r attachmentRepo) InsertMany(ctx context.Context, items []domain.NewAttachment) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := r.t.checkWrite("attachments"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := r.t.state.routes[it.RouteID]; !ok {
			return nil, foreignKey("attachments_route_id_fkey")
		}
		a := domain.Attachment{
			ID:         uuid.NewString(),
			RouteID:    r.t.state.routes[it.RouteID].ID,
			FilePath:   it.FilePath,
			Kind:       it.Kind,
			Caption:    it.Caption,
			UploadedBy: it.UploadedBy,
			CreatedAt:  r.t.now,
		}
		r.t.state.attachments[a.ID] = a
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (r attachmentRepo) UpdateMeta(ctx context.Context, routeID string, u domain.AttachmentUpdate) error {
	if err := r.t.checkWrite("attachments"); err != nil {
		return err
	}
	a, ok := r.t.state.attachments[u.ID]
	if !ok || a.RouteID != routeID {
		return errors.NotFound("attachment", u.ID)
	}
	if u.Kind != nil {
		a.Kind = *u.Kind
	}
	a.Caption = u.Caption
	r.t.state.attachments[a.ID] = a
	return nil
}

// DeleteMany ignores ids that are already gone or belong to another route.
func (r attachmentRepo) DeleteMany(ctx context.Context, routeID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.t.checkWrite("attachments"); err != nil {
		return err
	}
	for _, id := range ids {
		if a, ok := r.t.state.attachments[id]; ok && a.RouteID == routeID {
			delete(r.t.state.attachments, id)
		}
	}
	return nil
}
