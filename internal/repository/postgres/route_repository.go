package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type routeRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

// NewRouteRepository binds a route repository to q, a transaction or the pool.
func NewRouteRepository(q sqlx.ExtContext, logger *zap.Logger) repository.RouteRepository {
	return &routeRepository{q: q, logger: logger}
}

func (r *routeRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	return r.getOne(ctx, "r.id = $1", id, "")
}

func (r *routeRepository) GetBySlug(ctx context.Context, slug string) (*domain.Route, error) {
	return r.getOne(ctx, "r.slug = $1", slug, "")
}

// LockByID takes the row lock that serialises concurrent saves of one route.
func (r *routeRepository) LockByID(ctx context.Context, id string) (*domain.Route, error) {
	return r.getOne(ctx, "r.id = $1", id, "FOR UPDATE")
}

func (r *routeRepository) getOne(ctx context.Context, where, arg, suffix string) (*domain.Route, error) {
	query := fmt.Sprintf(`SELECT %s FROM routes r WHERE %s %s`, routeColumns, where, suffix)

	var row routeRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		if errors.Is(classify(err), errors.ErrNotFound) {
			return nil, errors.NotFound("route", arg)
		}
		r.logger.Error("Failed to get route", zap.String("key", arg), zap.Error(err))
		return nil, classify(err)
	}
	route := row.toDomain()
	return &route, nil
}

func (r *routeRepository) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Route, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "r.status = "+arg(string(*filter.Status)))
	}
	if filter.Query != "" {
		conds = append(conds, "r.display_name ILIKE "+arg("%"+escapeLike(filter.Query)+"%"))
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "r.created_by = "+arg(filter.CreatedBy))
	}
	if filter.OperatorID != "" {
		conds = append(conds, arg(filter.OperatorID)+"::uuid = ANY(r.operator_ids)")
	}
	if filter.TerminalID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM route_terminals rt WHERE rt.route_id = r.id AND rt.terminal_id = "+arg(filter.TerminalID)+")")
	}

	query := fmt.Sprintf(`SELECT %s FROM routes r`, routeColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(filter.Sort, "r.display_name", "r.updated_at")
	query += limitOffset(filter.Limit, filter.Offset)

	var rows []routeRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list routes", zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Route, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *routeRepository) Insert(ctx context.Context, f domain.RouteFields, actor *string) (string, error) {
	query := `
		INSERT INTO routes (
			slug, display_name, color, corridors, operator_ids, est_buses, hours, notes,
			review_notes, start_stop_id, end_stop_id, origin_terminal_id, destination_terminal_id,
			status, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5::uuid[], $6, $7, $8, $9, $10, $11, $12, $13, 'draft', $14, $14)
		RETURNING id
	`

	var id string
	err := sqlx.GetContext(ctx, r.q, &id, query,
		f.Slug, f.DisplayName, f.Color, pq.StringArray(f.Corridors), pq.StringArray(f.OperatorIDs),
		nullableInt(f.EstBuses), f.Hours, f.Notes, f.ReviewNotes,
		f.StartStopID, f.EndStopID, f.OriginTerminalID, f.DestinationTerminalID, actor,
	)
	if err != nil {
		r.logger.Error("Failed to insert route", zap.String("slug", f.Slug), zap.Error(err))
		return "", classify(err)
	}
	return id, nil
}

func (r *routeRepository) Update(ctx context.Context, id string, f domain.RouteFields, actor *string) error {
	query := `
		UPDATE routes SET
			slug = $2, display_name = $3, color = $4, corridors = $5, operator_ids = $6::uuid[],
			est_buses = $7, hours = $8, notes = $9, review_notes = $10,
			start_stop_id = $11, end_stop_id = $12,
			origin_terminal_id = $13, destination_terminal_id = $14,
			updated_by = $15, updated_at = now()
		WHERE id = $1
	`

	res, err := r.q.ExecContext(ctx, query, id,
		f.Slug, f.DisplayName, f.Color, pq.StringArray(f.Corridors), pq.StringArray(f.OperatorIDs),
		nullableInt(f.EstBuses), f.Hours, f.Notes, f.ReviewNotes,
		f.StartStopID, f.EndStopID, f.OriginTerminalID, f.DestinationTerminalID, actor,
	)
	if err != nil {
		r.logger.Error("Failed to update route", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "route", id)
}

func (r *routeRepository) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	query := `
		UPDATE routes SET
			status = $2, published_at = $3, updated_by = $4, updated_at = now(),
			review_notes = CASE WHEN $5 THEN $6 ELSE review_notes END
		WHERE id = $1
	`

	res, err := r.q.ExecContext(ctx, query, id,
		string(change.Status), change.PublishedAt, change.UpdatedBy, change.SetReviewNotes, change.ReviewNotes,
	)
	if err != nil {
		r.logger.Error("Failed to set route status", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "route", id)
}

func (r *routeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete route", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "route", id)
}
