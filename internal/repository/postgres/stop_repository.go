package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/geo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type stopRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func NewStopRepository(q sqlx.ExtContext, logger *zap.Logger) repository.StopRepository {
	return &stopRepository{q: q, logger: logger}
}

func (r *stopRepository) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	return r.getOne(ctx, "s.id = $1", id)
}

func (r *stopRepository) GetBySlug(ctx context.Context, slug string) (*domain.Stop, error) {
	return r.getOne(ctx, "s.slug = $1", slug)
}

func (r *stopRepository) getOne(ctx context.Context, where, arg string) (*domain.Stop, error) {
	query := fmt.Sprintf(`SELECT %s FROM stops s WHERE %s`, stopColumns, where)

	var row stopRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		if errors.Is(classify(err), errors.ErrNotFound) {
			return nil, errors.NotFound("stop", arg)
		}
		r.logger.Error("Failed to get stop", zap.String("key", arg), zap.Error(err))
		return nil, classify(err)
	}
	st := row.toDomain()
	return &st, nil
}

func (r *stopRepository) List(ctx context.Context, filter repository.ContentFilter) ([]domain.Stop, error) {
	where, args := placeFilter("s", filter)
	query := fmt.Sprintf(`SELECT %s FROM stops s%s`, stopColumns, where)
	query += orderBy(filter.Sort, "s.name", "s.updated_at")
	query += limitOffset(filter.Limit, filter.Offset)

	var rows []stopRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list stops", zap.Error(err))
		return nil, classify(err)
	}
	return stopsFromRows(rows), nil
}

// placeFilter builds the WHERE clause shared by stops and terminals.
func placeFilter(alias string, filter repository.ContentFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("%s.status = $%d", alias, len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		conds = append(conds, fmt.Sprintf("(%[1]s.name ILIKE $%[2]d OR %[1]s.ward ILIKE $%[2]d)", alias, len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conds = append(conds, fmt.Sprintf("%s.created_by = $%d", alias, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListByIDs returns the stops that exist, in the order of ids.
func (r *stopRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Stop, error) {
	if len(ids) == 0 {
		return []domain.Stop{}, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM stops s
		JOIN unnest($1::uuid[]) WITH ORDINALITY AS wanted(id, ord) ON wanted.id = s.id
		ORDER BY wanted.ord
	`, stopColumns)

	var rows []stopRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, pq.StringArray(ids)); err != nil {
		r.logger.Error("Failed to list stops by ids", zap.Int("count", len(ids)), zap.Error(err))
		return nil, classify(err)
	}
	return stopsFromRows(rows), nil
}

// InsertMany writes all stops in one statement. Ids are assigned here so
// the returned order matches the input.
func (r *stopRepository) InsertMany(ctx context.Context, stops []domain.NewStop) ([]string, error) {
	if len(stops) == 0 {
		return nil, nil
	}

	const width = 12
	ids := make([]string, len(stops))
	args := make([]interface{}, 0, len(stops)*width)
	for i, s := range stops {
		ids[i] = uuid.NewString()
		geomHex, err := pointEWKB(s.Lat, s.Lng)
		if err != nil {
			return nil, errors.ErrValidationFailed.Wrap(err)
		}
		status := s.Status
		if status == "" {
			status = domain.StatusDraft
		}
		args = append(args,
			ids[i], s.Slug, s.Name, pq.StringArray(nonNilSlice(s.NameAliases)), s.Lat, s.Lng, geomHex,
			s.Ward, s.Description, string(status), s.CreatedBy,
			domain.PublishedAtAfter(nil, status, timeNow()),
		)
	}

	query := `
		INSERT INTO stops (
			id, slug, name, name_aliases, lat, lng, geom, ward, description,
			status, created_by, published_at
		) VALUES ` + placeholders(len(stops), width)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert stops", zap.Int("count", len(stops)), zap.Error(err))
		return nil, classify(err)
	}
	return ids, nil
}

func (r *stopRepository) Update(ctx context.Context, id string, attrs domain.StopAttrs, actor *string) error {
	geomHex, err := pointEWKB(attrs.Lat, attrs.Lng)
	if err != nil {
		return errors.ErrValidationFailed.Wrap(err)
	}

	query := `
		UPDATE stops SET
			name = $2, name_aliases = $3, lat = $4, lng = $5, geom = $6::geometry,
			ward = $7, description = $8, updated_by = $9, updated_at = now()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, id,
		attrs.Name, pq.StringArray(nonNilSlice(attrs.NameAliases)), attrs.Lat, attrs.Lng, geomHex,
		attrs.Ward, attrs.Description, actor,
	)
	if err != nil {
		r.logger.Error("Failed to update stop", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "stop", id)
}

func (r *stopRepository) SetStatus(ctx context.Context, id string, change domain.StatusChange) error {
	query := `
		UPDATE stops SET status = $2, published_at = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, id, string(change.Status), change.PublishedAt, change.UpdatedBy)
	if err != nil {
		r.logger.Error("Failed to set stop status", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "stop", id)
}

func (r *stopRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM stops WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete stop", zap.String("id", id), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "stop", id)
}

type orderedStopRow struct {
	Seq int `db:"seq"`
	stopRow
}

func (r *stopRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.OrderedStop, error) {
	query := fmt.Sprintf(`
		SELECT rs.seq, %s
		FROM route_stops rs
		JOIN stops s ON s.id = rs.stop_id
		WHERE rs.route_id = $1
		ORDER BY rs.seq
	`, stopColumns)

	var rows []orderedStopRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, routeID); err != nil {
		r.logger.Error("Failed to list route stops", zap.String("route_id", routeID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.OrderedStop, len(rows))
	for i, row := range rows {
		out[i] = domain.OrderedStop{Seq: row.Seq, Stop: row.stopRow.toDomain()}
	}
	return out, nil
}

func (r *stopRepository) RoutesForStop(ctx context.Context, stopID string, status *domain.Status) ([]domain.Route, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM routes r
		WHERE EXISTS (SELECT 1 FROM route_stops rs WHERE rs.route_id = r.id AND rs.stop_id = $1)
		  AND ($2::content_status IS NULL OR r.status = $2::content_status)
		ORDER BY r.display_name
	`, routeColumns)

	var st *string
	if status != nil {
		s := string(*status)
		st = &s
	}

	var rows []routeRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, stopID, st); err != nil {
		r.logger.Error("Failed to list routes for stop", zap.String("stop_id", stopID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Route, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func stopsFromRows(rows []stopRow) []domain.Stop {
	out := make([]domain.Stop, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}

// pointEWKB renders the geom column as hex EWKB text, nil when either
// coordinate is missing.
func pointEWKB(lat, lng *float64) (*string, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	s, err := geo.PointEWKB(domain.Point{Lat: *lat, Lng: *lng})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
