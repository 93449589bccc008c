package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type statsRepository struct {
	q      sqlx.ExtContext
	logger *zap.Logger
}

// NewStatsRepository creates a stats repository over q.
func NewStatsRepository(q sqlx.ExtContext, logger *zap.Logger) repository.StatsRepository {
	return &statsRepository{
		q:      q,
		logger: logger,
	}
}

type statusCountRow struct {
	Entity string    `db:"entity"`
	Status string    `db:"status"`
	Count  int       `db:"count"`
	Latest time.Time `db:"latest"`
}

// GetStatistics counts routes, stops and terminals per workflow status.
func (r *statsRepository) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	query := `
		SELECT 'route' AS entity, status::text AS status, count(*) AS count, max(updated_at) AS latest
		FROM routes GROUP BY status
		UNION ALL
		SELECT 'stop', status::text, count(*), max(updated_at) FROM stops GROUP BY status
		UNION ALL
		SELECT 'terminal', status::text, count(*), max(updated_at) FROM terminals GROUP BY status
	`

	var rows []statusCountRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query); err != nil {
		r.logger.Error("failed to get content stats", zap.Error(err))
		return nil, fmt.Errorf("get content stats: %w", classify(err))
	}

	stats := &domain.Statistics{
		Routes:    domain.NewStatusCounts(),
		Stops:     domain.NewStatusCounts(),
		Terminals: domain.NewStatusCounts(),
	}
	for _, row := range rows {
		switch domain.EntityType(row.Entity) {
		case domain.EntityRoute:
			stats.Routes.Add(domain.Status(row.Status), row.Count)
		case domain.EntityStop:
			stats.Stops.Add(domain.Status(row.Status), row.Count)
		case domain.EntityTerminal:
			stats.Terminals.Add(domain.Status(row.Status), row.Count)
		}
		if row.Latest.After(stats.LastUpdated) {
			stats.LastUpdated = row.Latest
		}
	}
	if stats.LastUpdated.IsZero() {
		stats.LastUpdated = timeNow()
	}
	return stats, nil
}
