package middleware

import (
	"time"

	"github.com/daroutes-wiki/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by route pattern, so
// /routes/:slug is one series however many slugs are requested.
func Metrics(reg *metrics.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		pattern := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			pattern = r.Path
		}
		reg.ObserveRequest(pattern, c.Method(), status, time.Since(start))
		return err
	}
}
