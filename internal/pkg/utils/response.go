package utils

import (
	stderrors "errors"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total  int `json:"total,omitempty"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Data: data})
}

// SendError renders err with the status of the AppError in its chain. A
// failed route save also reports the step and the store's message so the
// editor sees which part of the save was rejected.
func SendError(c *fiber.Ctx, err error) error {
	appErr, ok := errors.As(err)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: errors.ErrInternalServer,
		})
	}

	var stepErr *errors.StepError
	if stderrors.As(err, &stepErr) {
		details := map[string]interface{}{"step": stepErr.Step}
		if msg := appErr.Cause(); msg != "" {
			details["store_message"] = msg
		}
		appErr = appErr.WithDetails(details)
	}

	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Error: appErr,
	})
}
