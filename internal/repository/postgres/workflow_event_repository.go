package postgres

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type workflowEventRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

func (r *workflowEventRepository) Append(ctx context.Context, e domain.WorkflowEvent) (string, error) {
	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}

	var id string
	err := sqlx.GetContext(ctx, r.q, &id, `
		INSERT INTO workflow_events (entity_type, entity_id, from_status, to_status, actor, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, string(e.EntityType), e.EntityID, from, string(e.ToStatus), e.Actor, e.Notes)
	if err != nil {
		r.logger.Error("Failed to append workflow event",
			zap.String("entity_type", string(e.EntityType)),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
		return "", classify(err)
	}
	return id, nil
}

// ListByEntity returns the entity's history oldest first.
func (r *workflowEventRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.WorkflowEvent, error) {
	var rows []workflowEventRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, entity_type, entity_id, from_status, to_status, actor, notes, created_at
		FROM workflow_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
	`, string(entityType), entityID)
	if err != nil {
		r.logger.Error("Failed to list workflow events", zap.String("entity_id", entityID), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.WorkflowEvent, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

type operatorRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

type operatorRow struct {
	ID    string  `db:"id"`
	Name  string  `db:"name"`
	Notes *string `db:"notes"`
}

func (r *operatorRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Operator, error) {
	if len(ids) == 0 {
		return []domain.Operator{}, nil
	}

	var rows []operatorRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT o.id, o.name, o.notes
		FROM operators o
		JOIN unnest($1::uuid[]) WITH ORDINALITY AS wanted(id, ord) ON wanted.id = o.id
		ORDER BY wanted.ord
	`, pq.StringArray(ids))
	if err != nil {
		r.logger.Error("Failed to list operators", zap.Int("count", len(ids)), zap.Error(err))
		return nil, classify(err)
	}

	out := make([]domain.Operator, len(rows))
	for i, row := range rows {
		out[i] = domain.Operator(row)
	}
	return out, nil
}
