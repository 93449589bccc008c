package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store runs every unit of work in its own transaction. With applyRLS the
// caller's claims are installed on the session first, so the database
// policies decide what the transaction may see and write.
type Store struct {
	db       *DB
	logger   *zap.Logger
	applyRLS bool
}

func NewStore(db *DB, applyRLS bool) *Store {
	return &Store{
		db:       db,
		logger:   db.logger,
		applyRLS: applyRLS,
	}
}

func (s *Store) WithinTx(ctx context.Context, actor domain.Actor, fn func(tx repository.Tx) error) error {
	return s.run(ctx, actor, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *Store) View(ctx context.Context, actor domain.Actor, fn func(tx repository.Tx) error) error {
	return s.run(ctx, actor, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *Store) run(ctx context.Context, actor domain.Actor, opts *sql.TxOptions, fn func(tx repository.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, opts)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(err))
		return classify(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				s.logger.Warn("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	if s.applyRLS {
		if err = applyActor(ctx, sqlTx, actor); err != nil {
			return err
		}
	}

	if err = fn(&tx{q: sqlTx, logger: s.logger}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", zap.Error(err))
		return classify(err)
	}
	return nil
}

// jwtClaims is the claim set the policies read through app_role().
type jwtClaims struct {
	Sub     string `json:"sub,omitempty"`
	Role    string `json:"role"`
	AppRole string `json:"app_role"`
}

func applyActor(ctx context.Context, q sqlx.ExtContext, actor domain.Actor) error {
	dbRole := "anon"
	if actor.IsAuthenticated() {
		dbRole = "authenticated"
	}
	claims, err := json.Marshal(jwtClaims{Sub: actor.UserID, Role: dbRole, AppRole: string(actor.Role)})
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`SELECT set_config('request.jwt.claims', $1, true), set_config('role', $2, true)`,
		string(claims), dbRole,
	)
	return classify(err)
}

type tx struct {
	q      *sqlx.Tx
	logger *zap.Logger
}

func (t *tx) Routes() repository.RouteRepository {
	return &routeRepository{q: t.q, logger: t.logger}
}

func (t *tx) Stops() repository.StopRepository {
	return &stopRepository{q: t.q, logger: t.logger}
}

func (t *tx) Terminals() repository.TerminalRepository {
	return &terminalRepository{q: t.q, logger: t.logger}
}

func (t *tx) RouteStops() repository.RouteStopRepository {
	return &routeStopRepository{q: t.q, logger: t.logger}
}

func (t *tx) RouteTerminals() repository.RouteTerminalRepository {
	return &routeTerminalRepository{q: t.q, logger: t.logger}
}

func (t *tx) Fares() repository.FareRepository {
	return &fareRepository{q: t.q, logger: t.logger}
}

func (t *tx) Attachments() repository.AttachmentRepository {
	return &attachmentRepository{q: t.q, logger: t.logger}
}

func (t *tx) WorkflowEvents() repository.WorkflowEventRepository {
	return &workflowEventRepository{q: t.q, logger: t.logger}
}

func (t *tx) Operators() repository.OperatorRepository {
	return &operatorRepository{q: t.q, logger: t.logger}
}

func (t *tx) Stats() repository.StatsRepository {
	return &statsRepository{q: t.q, logger: t.logger}
}

var _ repository.Store = (*Store)(nil)
