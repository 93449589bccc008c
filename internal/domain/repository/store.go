package repository

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
)

// Store - transactional access to the content model. Every call carries the
// acting-as identity; the store's policy layer decides what it may do.
type Store interface {
	// WithinTx runs fn in a read-write transaction. fn's error rolls back.
	WithinTx(ctx context.Context, actor domain.Actor, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, actor domain.Actor, fn func(tx Tx) error) error

	Health(ctx context.Context) error
}

// Tx - repositories bound to one transaction
type Tx interface {
	Routes() RouteRepository
	Stops() StopRepository
	Terminals() TerminalRepository
	RouteStops() RouteStopRepository
	RouteTerminals() RouteTerminalRepository
	Fares() FareRepository
	Attachments() AttachmentRepository
	WorkflowEvents() WorkflowEventRepository
	Operators() OperatorRepository
	Stats() StatsRepository
}

// SortOrder - list ordering
type SortOrder string

const (
	SortByName    SortOrder = "name"
	SortByUpdated SortOrder = "updated"
)

// ContentFilter - list filter shared by routes, stops and terminals
type ContentFilter struct {
	Status *domain.Status
	// Query is a case-insensitive substring match on the display name
	// (routes) or on name and ward (stops, terminals).
	Query      string
	CreatedBy  string
	OperatorID string
	TerminalID string
	Sort       SortOrder
	Limit      int
	Offset     int
}

// Published narrows f to rows visible to the public.
func (f ContentFilter) Published() ContentFilter {
	s := domain.StatusPublished
	f.Status = &s
	return f
}
