package repository

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
)

// RouteRepository - typed access to route rows
type RouteRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Route, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Route, error)
	List(ctx context.Context, filter ContentFilter) ([]domain.Route, error)

	// Insert creates the route in draft and returns its id.
	Insert(ctx context.Context, fields domain.RouteFields, actor *string) (string, error)
	Update(ctx context.Context, id string, fields domain.RouteFields, actor *string) error
	SetStatus(ctx context.Context, id string, change domain.StatusChange) error
	Delete(ctx context.Context, id string) error

	// LockByID loads the route and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id string) (*domain.Route, error)
}

type StopRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Stop, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Stop, error)
	List(ctx context.Context, filter ContentFilter) ([]domain.Stop, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Stop, error)

	// InsertMany creates stops and returns their ids in input order.
	InsertMany(ctx context.Context, stops []domain.NewStop) ([]string, error)
	Update(ctx context.Context, id string, attrs domain.StopAttrs, actor *string) error
	SetStatus(ctx context.Context, id string, change domain.StatusChange) error
	Delete(ctx context.Context, id string) error

	// ListByRoute returns the route's stops ordered by seq.
	ListByRoute(ctx context.Context, routeID string) ([]domain.OrderedStop, error)

	// RoutesForStop lists routes passing through the stop. A nil status means any.
	RoutesForStop(ctx context.Context, stopID string, status *domain.Status) ([]domain.Route, error)
}

type TerminalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Terminal, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Terminal, error)
	List(ctx context.Context, filter ContentFilter) ([]domain.Terminal, error)
	Insert(ctx context.Context, t domain.NewTerminal) (string, error)
	Update(ctx context.Context, id string, attrs domain.TerminalAttrs, actor *string) error
	SetStatus(ctx context.Context, id string, change domain.StatusChange) error

	// RoutesForTerminal lists linked routes with their role. A nil status means any.
	RoutesForTerminal(ctx context.Context, terminalID string, status *domain.Status) ([]domain.TerminalRoute, error)
}

type RouteStopRepository interface {
	DeleteByRoute(ctx context.Context, routeID string) error
	InsertMany(ctx context.Context, links []domain.RouteStop) error
	ListByRoute(ctx context.Context, routeID string) ([]domain.RouteStop, error)
}

type RouteTerminalRepository interface {
	// DeleteByRoute removes the route's links in the given roles, all roles when none are given.
	DeleteByRoute(ctx context.Context, routeID string, roles ...domain.TerminalRole) error
	InsertMany(ctx context.Context, links []domain.RouteTerminal) error
	ListByRoute(ctx context.Context, routeID string) ([]domain.RouteTerminal, error)
}

type FareRepository interface {
	DeleteByRoute(ctx context.Context, routeID string) error
	InsertMany(ctx context.Context, fares []domain.Fare) error
	// ListByRoute returns fares ordered by passenger type.
	ListByRoute(ctx context.Context, routeID string) ([]domain.Fare, error)
}

type AttachmentRepository interface {
	// ListByRoute returns attachments newest first.
	ListByRoute(ctx context.Context, routeID string) ([]domain.Attachment, error)
	InsertMany(ctx context.Context, items []domain.NewAttachment) ([]string, error)
	// UpdateMeta changes kind and caption only. The file path is immutable.
	UpdateMeta(ctx context.Context, routeID string, u domain.AttachmentUpdate) error
	DeleteMany(ctx context.Context, routeID string, ids []string) error
}

// WorkflowEventRepository - append only
type WorkflowEventRepository interface {
	Append(ctx context.Context, e domain.WorkflowEvent) (string, error)
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.WorkflowEvent, error)
}

type OperatorRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.Operator, error)
}
