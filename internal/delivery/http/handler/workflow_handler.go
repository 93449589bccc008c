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

// WorkflowHandler moves content between draft, in_review and published.
// One handler serves routes, stops and terminals.
type WorkflowHandler struct {
	workflowUC *usecase.WorkflowUseCase
	logger     *zap.Logger
}

func NewWorkflowHandler(workflowUC *usecase.WorkflowUseCase, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflowUC: workflowUC,
		logger:     logger,
	}
}

// Transition godoc
// @Summary Change the workflow status
// @Description Permitted moves: draft -> in_review, in_review -> published, in_review -> draft, published -> draft
// @Tags Workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "routes, stops or terminals"
// @Param id path string true "Entity id"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} utils.SuccessResponse{data=domain.WorkflowEvent}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/{entity}/{id}/transitions [post]
func (h *WorkflowHandler) Transition(entityType domain.EntityType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return utils.SendError(c, err)
		}
		var req dto.TransitionRequest
		if err := bindJSON(c, &req); err != nil {
			return utils.SendError(c, err)
		}

		event, err := h.workflowUC.Transition(c.Context(), middleware.Actor(c), entityType, id, usecase.TransitionInput{
			To:          domain.Status(req.To),
			Notes:       req.Notes,
			ReviewNotes: req.ReviewNotes,
		})
		if err != nil {
			return utils.SendError(c, err)
		}
		return utils.SendSuccess(c, event, nil)
	}
}

// History godoc
// @Summary Workflow history, oldest first
// @Tags Workflow
// @Produce json
// @Security BearerAuth
// @Param entity path string true "routes, stops or terminals"
// @Param id path string true "Entity id"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.WorkflowEvent}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/{entity}/{id}/events [get]
func (h *WorkflowHandler) History(entityType domain.EntityType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return utils.SendError(c, err)
		}
		events, err := h.workflowUC.History(c.Context(), middleware.Actor(c), entityType, id)
		if err != nil {
			return utils.SendError(c, err)
		}
		return utils.SendSuccess(c, events, &utils.Meta{Total: len(events)})
	}
}
