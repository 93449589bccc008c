// Package memory is an in-process implementation of the content store used
// in development and in use case tests. It keeps the constraints the hosted
// database enforces: unique slugs, foreign keys, a write policy on the
// caller's role, and all-or-nothing transactions.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store struct {
	mu     sync.RWMutex
	state  *state
	nowFn  func() time.Time
	logger *zap.Logger
}

func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  newState(),
		nowFn:  func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// SetClock replaces the time source, for tests.
func (s *Store) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// SeedOperators adds operator rows, which the core never writes.
func (s *Store) SeedOperators(ops ...domain.Operator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		if op.ID == "" {
			op.ID = uuid.NewString()
		}
		s.state.operators[op.ID] = op
	}
}

// WithinTx serialises writers. fn sees a private copy which replaces the
// shared state only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, actor domain.Actor, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{state: s.state.clone(), actor: actor, now: s.nowFn(), writable: true}
	if err := fn(t); err != nil {
		s.logger.Debug("memory transaction rolled back", zap.Error(err))
		return err
	}
	s.state = t.state
	return nil
}

func (s *Store) View(ctx context.Context, actor domain.Actor, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := &tx{state: s.state, actor: actor, now: s.nowFn()}
	return fn(t)
}

func (s *Store) Health(ctx context.Context) error {
	return ctx.Err()
}

type tx struct {
	state    *state
	actor    domain.Actor
	now      time.Time
	writable bool
}

// checkWrite emulates the hosted store's row policies: only editors and
// admins write content, and never inside a read-only transaction.
func (t *tx) checkWrite(table string) error {
	if !t.writable {
		return errors.ErrDatabaseError.Wrap(fmt.Errorf("cannot execute write on %s in a read-only transaction", table))
	}
	if !t.actor.CanEdit() {
		return errors.ErrAccessDenied.Wrap(fmt.Errorf("new row violates row-level security policy for table %q", table))
	}
	return nil
}

func conflict(constraint string) error {
	return errors.ErrConflict.
		WithDetails(map[string]interface{}{"constraint": constraint}).
		Wrap(fmt.Errorf("duplicate key value violates unique constraint %q", constraint))
}

func foreignKey(constraint string) error {
	return errors.ErrUnresolvedReference.
		WithDetails(map[string]interface{}{"constraint": constraint}).
		Wrap(fmt.Errorf("insert or update violates foreign key constraint %q", constraint))
}

func stillReferenced(constraint string) error {
	return errors.ErrConflict.
		WithDetails(map[string]interface{}{"constraint": constraint}).
		Wrap(fmt.Errorf("update or delete violates foreign key constraint %q", constraint))
}

func (t *tx) Routes() repository.RouteRepository                 { return routeRepo{t} }
func (t *tx) Stops() repository.StopRepository                   { return stopRepo{t} }
func (t *tx) Terminals() repository.TerminalRepository           { return terminalRepo{t} }
func (t *tx) RouteStops() repository.RouteStopRepository         { return routeStopRepo{t} }
func (t *tx) RouteTerminals() repository.RouteTerminalRepository { return routeTerminalRepo{t} }
func (t *tx) Fares() repository.FareRepository                   { return fareRepo{t} }
func (t *tx) Attachments() repository.AttachmentRepository       { return attachmentRepo{t} }
func (t *tx) WorkflowEvents() repository.WorkflowEventRepository { return eventRepo{t} }
func (t *tx) Operators() repository.OperatorRepository           { return operatorRepo{t} }
func (t *tx) Stats() repository.StatsRepository                  { return statsRepo{t} }

var _ repository.Store = (*Store)(nil)
