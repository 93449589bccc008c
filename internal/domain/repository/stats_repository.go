package repository

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
)

// StatsRepository - content counters
type StatsRepository interface {
	// GetStatistics returns per-status counts of routes, stops and terminals
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}
