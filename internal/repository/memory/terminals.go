package memory

import (
	"context"
	"sort"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
)

type terminalRepo struct{ t *tx }

func (r terminalRepo) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	term, ok := r.t.state.terminals[id]
	if !ok {
		return nil, errors.NotFound("terminal", id)
	}
	out := cloneTerminal(term)
	return &out, nil
}

func (r terminalRepo) GetBySlug(ctx context.Context, slug string) (*domain.Terminal, error) {
	for _, term := range r.t.state.terminals {
		if term.Slug == slug {
			out := cloneTerminal(term)
			return &out, nil
		}
	}
	return nil, errors.NotFound("terminal", slug)
}

func (r terminalRepo) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Terminal, error) {
	out := make([]domain.Terminal, 0, len(r.t.state.terminals))
	for _, term := range r.t.state.terminals {
		if filter.Status != nil && term.Status != *filter.Status {
			continue
		}
		if filter.Query != "" && !containsFold(term.Name, filter.Query) &&
			!(term.Ward != nil && containsFold(*term.Ward, filter.Query)) {
			continue
		}
		if filter.CreatedBy != "" && (term.CreatedBy == nil || *term.CreatedBy != filter.CreatedBy) {
			continue
		}
		out = append(out, cloneTerminal(term))
	}

	if filter.Sort == repository.SortByUpdated {
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r terminalRepo) Insert(ctx context.Context, nt domain.NewTerminal) (string, error) {
	if err := r.t.checkWrite("terminals"); err != nil {
		return "", err
	}
	if r.t.state.terminalSlugTaken(nt.Slug) {
		return "", conflict("terminals_slug_key")
	}
	status := nt.Status
	if status == "" {
		status = domain.StatusDraft
	}
	term := domain.Terminal{
		ID:          uuid.NewString(),
		Slug:        nt.Slug,
		Name:        nt.Name,
		NameAliases: append([]string{}, nt.NameAliases...),
		Lat:         nt.Lat,
		Lng:         nt.Lng,
		Ward:        nt.Ward,
		Description: nt.Description,
		Amenities:   append([]string{}, nt.Amenities...),
		Status:      status,
		CreatedBy:   nt.CreatedBy,
		UpdatedBy:   nt.CreatedBy,
		CreatedAt:   r.t.now,
		UpdatedAt:   r.t.now,
	}
	if status == domain.StatusPublished {
		term.PublishedAt = domain.PublishedAtAfter(nil, status, r.t.now)
	}
	r.t.state.terminals[term.ID] = term
	return term.ID, nil
}

func (r terminalRepo) Update(ctx context.Context, id string, attrs domain.TerminalAttrs, actor *string) error {
	if err := r.t.checkWrite("terminals"); err != nil {
		return err
	}
	term, ok := r.t.state.terminals[id]
	if !ok {
		return errors.NotFound("terminal", id)
	}
	term.Name = attrs.Name
	term.NameAliases = append([]string{}, attrs.NameAliases...)
	term.Lat = attrs.Lat
	term.Lng = attrs.Lng
	term.Ward = attrs.Ward
	term.Description = attrs.Description
	term.Amenities = append([]string{}, attrs.Amenities...)
	term.UpdatedBy = actor
	term.UpdatedAt = r.t.now
	r.t.state.terminals[term.ID] = term
	return nil
}

func (r terminalRepo) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	if err := r.t.checkWrite("terminals"); err != nil {
		return err
	}
	term, ok := r.t.state.terminals[id]
	if !ok {
		return errors.NotFound("terminal", id)
	}
	term.Status = change.Status
	term.PublishedAt = change.PublishedAt
	term.UpdatedBy = change.UpdatedBy
	term.UpdatedAt = r.t.now
	r.t.state.terminals[term.ID] = term
	return nil
}

func (r terminalRepo) RoutesForTerminal(ctx context.Context, terminalID string, status *domain.Status) ([]domain.TerminalRoute, error) {
	var out []domain.TerminalRoute
	for routeID, links := range r.t.state.routeTerminals {
		route, ok := r.t.state.routes[routeID]
		if !ok || (status != nil && route.Status != *status) {
			continue
		}
		for _, l := range links {
			if l.TerminalID == terminalID {
				out = append(out, domain.TerminalRoute{Role: l.Role, Route: cloneRoute(route)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Route.DisplayName != out[j].Route.DisplayName {
			return out[i].Route.DisplayName < out[j].Route.DisplayName
		}
		return out[i].Role < out[j].Role
	})
	return out, nil
}
