package handler

import (
	"github.com/daroutes-wiki/internal/delivery/http/middleware"
	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/daroutes-wiki/internal/usecase"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RouteHandler serves the dashboard route editor
type RouteHandler struct {
	composer *usecase.RouteComposer
	editorUC *usecase.EditorUseCase
	logger   *zap.Logger
}

func NewRouteHandler(composer *usecase.RouteComposer, editorUC *usecase.EditorUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		composer: composer,
		editorUC: editorUC,
		logger:   logger,
	}
}

// ListRoutes godoc
// @Summary List routes in every status
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param q query string false "Display name contains"
// @Param status query string false "draft, in_review or published"
// @Param mine query bool false "Only routes I created"
// @Param sort query string false "name or updated"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Route}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes [get]
func (h *RouteHandler) ListRoutes(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := bindQuery(c, &q); err != nil {
		return utils.SendError(c, err)
	}
	actor := middleware.Actor(c)
	routes, err := h.editorUC.ListRoutes(c.Context(), actor, q.Filter(actor))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, routes, &utils.Meta{Total: len(routes), Limit: q.Limit, Offset: q.Offset})
}

// GetRoute godoc
// @Summary Get a route for editing
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route id"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteEditorView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes/{id} [get]
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	view, err := h.editorUC.GetRouteEditorView(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// CreateRoute godoc
// @Summary Create a route
// @Description Stores the route with its stops, terminals, fares and attachments in one transaction. New routes start as draft.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveRouteRequest true "Route draft"
// @Success 201 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes [post]
func (h *RouteHandler) CreateRoute(c *fiber.Ctx) error {
	var req dto.SaveRouteRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	id, err := h.composer.SaveRoute(c.Context(), middleware.Actor(c), nil, req.ToDraft())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.SaveResult{ID: id})
}

// UpdateRoute godoc
// @Summary Replace a route
// @Description Full replace of stops, origin and terminus, fares and attachments. The status is unchanged.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route id"
// @Param request body dto.SaveRouteRequest true "Route draft"
// @Success 200 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes/{id} [put]
func (h *RouteHandler) UpdateRoute(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	var req dto.SaveRouteRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if _, err := h.composer.SaveRoute(c.Context(), middleware.Actor(c), &id, req.ToDraft()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SaveResult{ID: id}, nil)
}

// DeleteRoute godoc
// @Summary Delete a route
// @Tags Dashboard
// @Security BearerAuth
// @Param id path string true "Route id"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes/{id} [delete]
func (h *RouteHandler) DeleteRoute(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := h.composer.DeleteRoute(c.Context(), middleware.Actor(c), id); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetThroughTerminals godoc
// @Summary Replace the terminals a route passes through
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route id"
// @Param request body dto.ThroughTerminalsRequest true "Through terminals"
// @Success 200 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/routes/{id}/through-terminals [put]
func (h *RouteHandler) SetThroughTerminals(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	var req dto.ThroughTerminalsRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	links := make([]domain.RouteTerminal, len(req.Terminals))
	for i, t := range req.Terminals {
		links[i] = domain.RouteTerminal{TerminalID: t.TerminalID, Notes: t.Notes}
	}
	if err := h.composer.SetThroughTerminals(c.Context(), middleware.Actor(c), id, links); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SaveResult{ID: id}, nil)
}
