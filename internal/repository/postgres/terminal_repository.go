package postgres

import (
	"context"
	"fmt"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type terminalRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func NewTerminalRepository(q sqlx.ExtContext, logger *zap.Logger) repository.TerminalRepository {
	return &terminalRepository{q: q, logger: logger}
}

func (r *terminalRepository) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	return r.getOne(ctx, "t.id = $1", id)
}

func (r *terminalRepository) GetBySlug(ctx context.Context, slug string) (*domain.Terminal, error) {
	return r.getOne(ctx, "t.slug = $1", slug)
}

func (r *terminalRepository) getOne(ctx context.Context, where, arg string) (*domain.Terminal, error) {
	query := fmt.Sprintf(`SELECT %s FROM terminals t WHERE %s`, terminalColumns, where)

	var row terminalRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		if errors.Is(classify(err), errors.ErrNotFound) {
			return nil, errors.NotFound("terminal", arg)
		}
		r.logger.Error("Failed to get terminal", zap.String("key", arg), zap.Error(err))
		return nil, classify(err)
	}
	t := row.toDomain()
	return &t, nil
}

func (r *terminalRepository) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Terminal, error) {
	where, args := placeFilter("t", filter)
	query := fmt.Sprintf(`SELECT %s FROM terminals t%s`, terminalColumns, where)
	query += orderBy(filter.Sort, "t.name", "t.updated_at")
	query += limitOffset(filter.Limit, filter.Offset)

	var rows []terminalRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list terminals", zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Terminal, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *terminalRepository) Insert(ctx context.Context, t domain.NewTerminal) (string, error) {
	geomHex, err := pointEWKB(t.Lat, t.Lng)
	if err != nil {
		return "", errors.ErrValidationFailed.Wrap(err)
	}
	status := t.Status
	if status == "" {
		status = domain.StatusDraft
	}

	query := `
		INSERT INTO terminals (
			slug, name, name_aliases, lat, lng, geom, ward, description, amenities,
			status, created_by, updated_by, published_at
		) VALUES ($1, $2, $3, $4, $5, $6::geometry, $7, $8, $9, $10, $11, $11, $12)
		RETURNING id
	`

	var id string
	err = sqlx.GetContext(ctx, r.q, &id, query,
		t.Slug, t.Name, pq.StringArray(nonNilSlice(t.NameAliases)), t.Lat, t.Lng, geomHex,
		t.Ward, t.Description, pq.StringArray(nonNilSlice(t.Amenities)),
		string(status), t.CreatedBy, domain.PublishedAtAfter(nil, status, timeNow()),
	)
	if err != nil {
		r.logger.Error("Failed to insert terminal", zap.String("slug", t.Slug), zap.Error(err))
		return "", classify(err)
	}
	return id, nil
}

func (r *terminalRepository) Update(ctx context.Context, id string, attrs domain.TerminalAttrs, actor *string) error {
	geomHex, err := pointEWKB(attrs.Lat, attrs.Lng)
	if err != nil {
		return errors.ErrValidationFailed.Wrap(err)
	}

	query := `
		UPDATE terminals SET
			name = $2, name_aliases = $3, lat = $4, lng = $5, geom = $6::geometry,
			ward = $7, description = $8, amenities = $9, updated_by = $10, updated_at = now()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, id,
		attrs.Name, pq.StringArray(nonNilSlice(attrs.NameAliases)), attrs.Lat, attrs.Lng, geomHex,
		attrs.Ward, attrs.Description, pq.StringArray(nonNilSlice(attrs.Amenities)), actor,
	)
	if err != nil {
		r.logger.Error("Failed to update terminal", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "terminal", id)
}

func (r *terminalRepository) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	query := `
		UPDATE terminals SET status = $2, published_at = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, id, string(change.Status), change.PublishedAt, change.UpdatedBy)
	if err != nil {
		r.logger.Error("Failed to set terminal status", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "terminal", id)
}

type terminalRouteRow struct {
	Role string `db:"role"`
	routeRow
}

func (r *terminalRepository) RoutesForTerminal(ctx context.Context, terminalID string, status *domain.Status) ([]domain.TerminalRoute, error) {
	query := fmt.Sprintf(`
		SELECT rt.role, %s
		FROM route_terminals rt
		JOIN routes r ON r.id = rt.route_id
		WHERE rt.terminal_id = $1
		  AND ($2::content_status IS NULL OR r.status = $2::content_status)
		ORDER BY r.display_name, rt.role
	`, routeColumns)

	var st *string
	if status != nil {
		s := string(*status)
		st = &s
	}

	var rows []terminalRouteRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, terminalID, st); err != nil {
		r.logger.Error("Failed to list routes for terminal", zap.String("terminal_id", terminalID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.TerminalRoute, len(rows))
	for i, row := range rows {
		out[i] = domain.TerminalRoute{Role: domain.TerminalRole(row.Role), Route: row.routeRow.toDomain()}
	}
	return out, nil
}
