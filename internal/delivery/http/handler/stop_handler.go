package handler

import (
	"github.com/daroutes-wiki/internal/delivery/http/middleware"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/daroutes-wiki/internal/usecase"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StopHandler serves the dashboard stop and terminal editors
type StopHandler struct {
	editorUC *usecase.EditorUseCase
	logger   *zap.Logger
}

func NewStopHandler(editorUC *usecase.EditorUseCase, logger *zap.Logger) *StopHandler {
	return &StopHandler{
		editorUC: editorUC,
		logger:   logger,
	}
}

// ListStops godoc
// @Summary List stops in every status
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name or ward contains"
// @Param status query string false "draft, in_review or published"
// @Param mine query bool false "Only stops I created"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Stop}
// @Router /api/v1/dashboard/stops [get]
func (h *StopHandler) ListStops(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := bindQuery(c, &q); err != nil {
		return utils.SendError(c, err)
	}
	actor := middleware.Actor(c)
	stops, err := h.editorUC.ListStops(c.Context(), actor, q.Filter(actor))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stops, &utils.Meta{Total: len(stops), Limit: q.Limit, Offset: q.Offset})
}

// SearchStops godoc
// @Summary Stop picker
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param q query string true "Name or ward contains"
// @Param limit query int false "Maximum results" default(20)
// @Success 200 {object} utils.SuccessResponse{data=[]dto.StopSummary}
// @Router /api/v1/dashboard/stops/search [get]
func (h *StopHandler) SearchStops(c *fiber.Ctx) error {
	stops, err := h.editorUC.SearchStops(c.Context(), middleware.Actor(c), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stops, &utils.Meta{Total: len(stops)})
}

// GetStop godoc
// @Summary Get a stop for editing
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stop id"
// @Success 200 {object} utils.SuccessResponse{data=dto.StopEditorView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/stops/{id} [get]
func (h *StopHandler) GetStop(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	view, err := h.editorUC.GetStop(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// CreateStop godoc
// @Summary Create a stop
// @Description A missing slug is generated from the name. A missing ward is geocoded from the coordinates.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StopRequest true "Stop"
// @Success 201 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/stops [post]
func (h *StopHandler) CreateStop(c *fiber.Ctx) error {
	var req dto.StopRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	id, err := h.editorUC.CreateStop(c.Context(), middleware.Actor(c), req.Slug, req.Attrs())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.SaveResult{ID: id})
}

// UpdateStop godoc
// @Summary Update a stop
// @Description The slug never changes. A published stop, or one on any route, keeps its coordinates.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stop id"
// @Param request body dto.StopRequest true "Stop"
// @Success 200 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/stops/{id} [put]
func (h *StopHandler) UpdateStop(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	var req dto.StopRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := h.editorUC.UpdateStop(c.Context(), middleware.Actor(c), id, req.Attrs()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SaveResult{ID: id}, nil)
}

// ListTerminals godoc
// @Summary List terminals in every status
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name or ward contains"
// @Param status query string false "draft, in_review or published"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Terminal}
// @Router /api/v1/dashboard/terminals [get]
func (h *StopHandler) ListTerminals(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := bindQuery(c, &q); err != nil {
		return utils.SendError(c, err)
	}
	actor := middleware.Actor(c)
	terminals, err := h.editorUC.ListTerminals(c.Context(), actor, q.Filter(actor))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, terminals, &utils.Meta{Total: len(terminals), Limit: q.Limit, Offset: q.Offset})
}

// GetTerminal godoc
// @Summary Get a terminal for editing
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Terminal id"
// @Success 200 {object} utils.SuccessResponse{data=dto.TerminalEditorView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/terminals/{id} [get]
func (h *StopHandler) GetTerminal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	view, err := h.editorUC.GetTerminal(c.Context(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// CreateTerminal godoc
// @Summary Create a terminal
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TerminalRequest true "Terminal"
// @Success 201 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/terminals [post]
func (h *StopHandler) CreateTerminal(c *fiber.Ctx) error {
	var req dto.TerminalRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	id, err := h.editorUC.CreateTerminal(c.Context(), middleware.Actor(c), req.Slug, req.Attrs())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.SaveResult{ID: id})
}

// UpdateTerminal godoc
// @Summary Update a terminal
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Terminal id"
// @Param request body dto.TerminalRequest true "Terminal"
// @Success 200 {object} utils.SuccessResponse{data=dto.SaveResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/terminals/{id} [put]
func (h *StopHandler) UpdateTerminal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	var req dto.TerminalRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := h.editorUC.UpdateTerminal(c.Context(), middleware.Actor(c), id, req.Attrs()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SaveResult{ID: id}, nil)
}
