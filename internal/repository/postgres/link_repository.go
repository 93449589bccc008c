package postgres

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type routeStopRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func (r *routeStopRepository) DeleteByRoute(ctx context.Context, routeID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = $1`, routeID); err != nil {
		r.logger.Error("Failed to delete route stops", zap.String("route_id", routeID), zap.Error(err))
		return classify(err)
	}
	return nil
}

func (r *routeStopRepository) InsertMany(ctx context.Context, links []domain.RouteStop) error {
	if len(links) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(links)*3)
	for _, l := range links {
		args = append(args, l.RouteID, l.StopID, l.Seq)
	}
	query := `INSERT INTO route_stops (route_id, stop_id, seq) VALUES ` + placeholders(len(links), 3)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert route stops", zap.Int("count", len(links)), zap.Error(err))
		return classify(err)
	}
	return nil
}

type routeStopRow struct {
	RouteID string `db:"route_id"`
	StopID  string `db:"stop_id"`
	Seq     int    `db:"seq"`
}

func (r *routeStopRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.RouteStop, error) {
	var rows []routeStopRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT route_id, stop_id, seq FROM route_stops WHERE route_id = $1 ORDER BY seq`, routeID)
	if err != nil {
		r.logger.Error("Failed to list route stop links", zap.String("route_id", routeID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.RouteStop, len(rows))
	for i, row := range rows {
		out[i] = domain.RouteStop(row)
	}
	return out, nil
}

type routeTerminalRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func (r *routeTerminalRepository) DeleteByRoute(ctx context.Context, routeID string, roles ...domain.TerminalRole) error {
	var err error
	if len(roles) == 0 {
		_, err = r.q.ExecContext(ctx, `DELETE FROM route_terminals WHERE route_id = $1`, routeID)
	} else {
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		_, err = r.q.ExecContext(ctx,
			`DELETE FROM route_terminals WHERE route_id = $1 AND role = ANY($2::terminal_role[])`,
			routeID, pq.StringArray(names))
	}
	if err != nil {
		r.logger.Error("Failed to delete route terminals", zap.String("route_id", routeID), zap.Error(err))
		return classify(err)
	}
	return nil
}

func (r *routeTerminalRepository) InsertMany(ctx context.Context, links []domain.RouteTerminal) error {
	if len(links) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(links)*4)
	for _, l := range links {
		if !l.Role.Valid() {
			return errors.Validation(errors.Violation{Field: "role", Message: "must be origin, terminus or through"})
		}
		args = append(args, l.RouteID, l.TerminalID, string(l.Role), l.Notes)
	}
	query := `INSERT INTO route_terminals (route_id, terminal_id, role, notes) VALUES ` + placeholders(len(links), 4)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert route terminals", zap.Int("count", len(links)), zap.Error(err))
		return classify(err)
	}
	return nil
}

type routeTerminalRow struct {
	RouteID    string  `db:"route_id"`
	TerminalID string  `db:"terminal_id"`
	Role       string  `db:"role"`
	Notes      *string `db:"notes"`
}

func (r *routeTerminalRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.RouteTerminal, error) {
	var rows []routeTerminalRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT route_id, terminal_id, role, notes FROM route_terminals
		WHERE route_id = $1
		ORDER BY CASE role WHEN 'origin' THEN 0 WHEN 'through' THEN 1 ELSE 2 END, terminal_id
	`, routeID)
	if err != nil {
		r.logger.Error("Failed to list route terminals", zap.String("route_id", routeID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.RouteTerminal, len(rows))
	for i, row := range rows {
		out[i] = domain.RouteTerminal{
			RouteID:    row.RouteID,
			TerminalID: row.TerminalID,
			Role:       domain.TerminalRole(row.Role),
			Notes:      row.Notes,
		}
	}
	return out, nil
}

type fareRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func (r *fareRepository) DeleteByRoute(ctx context.Context, routeID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM fares WHERE route_id = $1`, routeID); err != nil {
		r.logger.Error("Failed to delete fares", zap.String("route_id", routeID), zap.Error(err))
		return classify(err)
	}
	return nil
}

func (r *fareRepository) InsertMany(ctx context.Context, fares []domain.Fare) error {
	if len(fares) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(fares)*6)
	for _, f := range fares {
		args = append(args, f.RouteID, f.FromStopID, f.ToStopID, f.PassengerType, f.Price, f.Note)
	}
	query := `INSERT INTO fares (route_id, from_stop_id, to_stop_id, passenger_type, price_tzs, note) VALUES ` +
		placeholders(len(fares), 6)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert fares", zap.Int("count", len(fares)), zap.Error(err))
		return classify(err)
	}
	return nil
}

type fareRow struct {
	ID            string  `db:"id"`
	RouteID       string  `db:"route_id"`
	FromStopID    string  `db:"from_stop_id"`
	ToStopID      string  `db:"to_stop_id"`
	PassengerType string  `db:"passenger_type"`
	Price         int64   `db:"price_tzs"`
	Note          *string `db:"note"`
}

func (r *fareRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.Fare, error) {
	var rows []fareRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, route_id, from_stop_id, to_stop_id, passenger_type, price_tzs, note
		FROM fares WHERE route_id = $1
		ORDER BY passenger_type, id
	`, routeID)
	if err != nil {
		r.logger.Error("Failed to list fares", zap.String("route_id", routeID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Fare, len(rows))
	for i, row := range rows {
		out[i] = domain.Fare(row)
	}
	return out, nil
}

type attachmentRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func (r *attachmentRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.Attachment, error) {
	var rows []attachmentRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, route_id, file_path, kind, caption, uploaded_by, created_at
		FROM attachments WHERE route_id = $1
		ORDER BY created_at DESC, id
	`, routeID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.String("route_id", routeID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Attachment, len(rows))
	for i, row := range rows {
		out[i] = domain.Attachment(row)
	}
	return out, nil
}

func (r *attachmentRepository) InsertMany(ctx context.Context, items []domain.NewAttachment) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(items)*5)
	for _, it := range items {
		args = append(args, it.RouteID, it.FilePath, it.Kind, it.Caption, it.UploadedBy)
	}
	query := `INSERT INTO attachments (route_id, file_path, kind, caption, uploaded_by) VALUES ` +
		placeholders(len(items), 5) + ` RETURNING id`

	var ids []string
	if err := sqlx.SelectContext(ctx, r.q, &ids, query, args...); err != nil {
		r.logger.Error("Failed to insert attachments", zap.Int("count", len(items)), zap.Error(err))
		return nil, classify(err)
	}
	return ids, nil
}

// UpdateMeta leaves file_path alone; it is immutable once stored.
func (r *attachmentRepository) UpdateMeta(ctx context.Context, routeID string, u domain.AttachmentUpdate) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE attachments SET kind = COALESCE($3, kind), caption = $4 WHERE id = $1 AND route_id = $2`,
		u.ID, routeID, u.Kind, u.Caption)
	if err != nil {
		r.logger.Error("Failed to update attachment", zap.String("id", u.ID), zap.Error(err))
		return classify(err)
	}
	return expectRow(res, "attachment", u.ID)
}

func (r *attachmentRepository) DeleteMany(ctx context.Context, routeID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM attachments WHERE route_id = $1 AND id = ANY($2::uuid[])`,
		routeID, pq.StringArray(ids))
	if err != nil {
		r.logger.Error("Failed to delete attachments", zap.String("route_id", routeID), zap.Error(err))
		return classify(err)
	}
	return nil
}
