package handler

import (
	"github.com/daroutes-wiki/internal/delivery/http/middleware"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/daroutes-wiki/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatsHandler serves content counters
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
	logger  *zap.Logger
}

func NewStatsHandler(statsUC *usecase.StatsUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsUC: statsUC,
		logger:  logger,
	}
}

// GetStatistics godoc
// @Summary Get content statistics
// @Description Per-status counts of routes, stops and terminals
// @Tags Statistics
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Statistics}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.statsUC.GetStatistics(c.Context())
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stats, nil)
}

// DashboardCounters godoc
// @Summary Dashboard counters
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponse{data=dto.DashboardCounters}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/counters [get]
func (h *StatsHandler) DashboardCounters(c *fiber.Ctx) error {
	counters, err := h.statsUC.DashboardCounters(c.Context(), middleware.Actor(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, counters, nil)
}
