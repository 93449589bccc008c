package testhelpers

import (
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewStoreForTest builds a Store over the test connection. Row level
// security is left off: the test role owns the tables.
func NewStoreForTest(db *sqlx.DB, logger *zap.Logger) *postgres.Store {
	return postgres.NewStore(NewDBForTest(db, logger), false)
}

func NewStatsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.StatsRepository {
	return postgres.NewStatsRepository(db, logger)
}
