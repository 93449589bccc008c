package handler

import (
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/daroutes-wiki/internal/usecase"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler serves the public, read-only API
type CatalogHandler struct {
	catalogUC *usecase.CatalogUseCase
	logger    *zap.Logger
}

func NewCatalogHandler(catalogUC *usecase.CatalogUseCase, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogUC: catalogUC,
		logger:    logger,
	}
}

// ListRoutes godoc
// @Summary List published routes
// @Tags Routes
// @Produce json
// @Param q query string false "Display name contains"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.RouteSummary}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes [get]
func (h *CatalogHandler) ListRoutes(c *fiber.Ctx) error {
	routes, err := h.catalogUC.ListRoutes(c.Context(), c.Query("q"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, routes, &utils.Meta{Total: len(routes)})
}

// GetRoute godoc
// @Summary Get a published route
// @Description Ordered stops, fares grouped by passenger type, terminals, attachments and GeoJSON geometry
// @Tags Routes
// @Produce json
// @Param slug path string true "Route slug"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteDetail}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug} [get]
func (h *CatalogHandler) GetRoute(c *fiber.Ctx) error {
	route, err := h.catalogUC.GetRoute(c.Context(), c.Params("slug"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, route, nil)
}

// QuoteFare godoc
// @Summary Price a trip between two stop positions
// @Tags Routes
// @Produce json
// @Param slug path string true "Route slug"
// @Param from query int true "1-based position of the boarding stop"
// @Param to query int true "1-based position of the alighting stop"
// @Param peak query bool false "Apply the peak multiplier"
// @Param passenger_type query string false "adult, student, child or senior" default(adult)
// @Success 200 {object} utils.SuccessResponse{data=dto.FareQuote}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug}/fare [get]
func (h *CatalogHandler) QuoteFare(c *fiber.Ctx) error {
	var q dto.FareQuoteQuery
	if err := bindQuery(c, &q); err != nil {
		return utils.SendError(c, err)
	}
	quote, err := h.catalogUC.QuoteFare(c.Context(), c.Params("slug"), q)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, quote, nil)
}

// ListStops godoc
// @Summary List published stops
// @Tags Stops
// @Produce json
// @Param q query string false "Name or ward contains"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.StopSummary}
// @Router /api/v1/stops [get]
func (h *CatalogHandler) ListStops(c *fiber.Ctx) error {
	stops, err := h.catalogUC.ListStops(c.Context(), c.Query("q"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stops, &utils.Meta{Total: len(stops)})
}

// GetStop godoc
// @Summary Get a published stop with the routes serving it
// @Tags Stops
// @Produce json
// @Param slug path string true "Stop slug"
// @Success 200 {object} utils.SuccessResponse{data=dto.StopDetail}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/stops/{slug} [get]
func (h *CatalogHandler) GetStop(c *fiber.Ctx) error {
	stop, err := h.catalogUC.GetStop(c.Context(), c.Params("slug"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stop, nil)
}

// ListTerminals godoc
// @Summary List published terminals
// @Tags Terminals
// @Produce json
// @Param q query string false "Name or ward contains"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.StopSummary}
// @Router /api/v1/terminals [get]
func (h *CatalogHandler) ListTerminals(c *fiber.Ctx) error {
	terminals, err := h.catalogUC.ListTerminals(c.Context(), c.Query("q"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, terminals, &utils.Meta{Total: len(terminals)})
}

// GetTerminal godoc
// @Summary Get a published terminal with its routes grouped by role
// @Tags Terminals
// @Produce json
// @Param slug path string true "Terminal slug"
// @Success 200 {object} utils.SuccessResponse{data=dto.TerminalDetail}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/terminals/{slug} [get]
func (h *CatalogHandler) GetTerminal(c *fiber.Ctx) error {
	terminal, err := h.catalogUC.GetTerminal(c.Context(), c.Params("slug"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, terminal, nil)
}
