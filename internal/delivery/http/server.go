package http

import (
	"context"
	"time"

	"github.com/daroutes-wiki/internal/config"
	"github.com/daroutes-wiki/internal/delivery/http/handler"
	"github.com/daroutes-wiki/internal/delivery/http/middleware"
	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers - every HTTP handler the server mounts
type Handlers struct {
	Health   *handler.HealthHandler
	Catalog  *handler.CatalogHandler
	Stats    *handler.StatsHandler
	Route    *handler.RouteHandler
	Stop     *handler.StopHandler
	Workflow *handler.WorkflowHandler
}

// Server - HTTP server on Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Registry
	handlers Handlers
}

func NewServer(cfg *config.Config, logger *zap.Logger, reg *metrics.Registry, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "DaRoutes Wiki",
		Immutable:    true,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		metrics:  reg,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Metrics(s.metrics))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	api := s.app.Group("/api/v1")
	api.Get("/health", h.Health.Health)

	// Public read models, published content only
	api.Get("/routes", h.Catalog.ListRoutes)
	api.Get("/routes/:slug", h.Catalog.GetRoute)
	api.Get("/routes/:slug/fare", h.Catalog.QuoteFare)
	api.Get("/stops", h.Catalog.ListStops)
	api.Get("/stops/:slug", h.Catalog.GetStop)
	api.Get("/terminals", h.Catalog.ListTerminals)
	api.Get("/terminals/:slug", h.Catalog.GetTerminal)
	api.Get("/stats", h.Stats.GetStatistics)

	dashboard := api.Group("/dashboard",
		middleware.Auth(s.config.Auth.JWTSecret, s.config.Auth.Issuer, s.logger),
		middleware.RateLimitWrites(s.config.RateLimit.WritesPerSecond, s.config.RateLimit.Burst),
	)
	dashboard.Get("/counters", h.Stats.DashboardCounters)

	routes := dashboard.Group("/routes")
	routes.Get("/", h.Route.ListRoutes)
	routes.Post("/", h.Route.CreateRoute)
	routes.Get("/:id", h.Route.GetRoute)
	routes.Put("/:id", h.Route.UpdateRoute)
	routes.Delete("/:id", h.Route.DeleteRoute)
	routes.Put("/:id/through-terminals", h.Route.SetThroughTerminals)
	routes.Post("/:id/transitions", h.Workflow.Transition(domain.EntityRoute))
	routes.Get("/:id/events", h.Workflow.History(domain.EntityRoute))

	stops := dashboard.Group("/stops")
	stops.Get("/", h.Stop.ListStops)
	stops.Post("/", h.Stop.CreateStop)
	stops.Get("/search", h.Stop.SearchStops)
	stops.Get("/:id", h.Stop.GetStop)
	stops.Put("/:id", h.Stop.UpdateStop)
	stops.Post("/:id/transitions", h.Workflow.Transition(domain.EntityStop))
	stops.Get("/:id/events", h.Workflow.History(domain.EntityStop))

	terminals := dashboard.Group("/terminals")
	terminals.Get("/", h.Stop.ListTerminals)
	terminals.Post("/", h.Stop.CreateTerminal)
	terminals.Get("/:id", h.Stop.GetTerminal)
	terminals.Put("/:id", h.Stop.UpdateTerminal)
	terminals.Post("/:id/transitions", h.Workflow.Transition(domain.EntityTerminal))
	terminals.Get("/:id/events", h.Workflow.History(domain.EntityTerminal))
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler renders errors that escape the handlers, including
// fiber's own 404 and 405, in the AppError envelope.
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			err = errors.New(fiberCode(e.Code), e.Message, e.Code)
		}
		if _, ok := errors.As(err); !ok {
			logger.Error("Unhandled HTTP error",
				zap.String("path", c.Path()),
				zap.String("request_id", middleware.RequestID(c)),
				zap.Error(err),
			)
		}
		return utils.SendError(c, err)
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return errors.ErrNotFound.Code
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	default:
		if status >= 500 {
			return errors.ErrInternalServer.Code
		}
		return errors.ErrInvalidRequest.Code
	}
}
