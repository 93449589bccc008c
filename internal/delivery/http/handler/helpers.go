package handler

import (
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// bindJSON parses the body into req and validates it.
func bindJSON(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithMessage("invalid request body").Wrap(err)
	}
	return validator.Validate(req)
}

// bindQuery parses the query string into req and validates it.
func bindQuery(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return errors.ErrInvalidRequest.WithMessage("invalid query string").Wrap(err)
	}
	return validator.Validate(req)
}

// idParam returns the :id path parameter, which must be a uuid.
func idParam(c *fiber.Ctx) (string, error) {
	id := utils.CopyString(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.Validation(errors.Violation{Field: "id", Message: "must be a uuid"})
	}
	return id, nil
}
