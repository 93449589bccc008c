package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - allowed origins come from API_CORS_ORIGINS, comma separated
func CORS(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Content-Type,Accept,Accept-Language,Authorization,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		// credentials are never sent with a wildcard origin
		AllowCredentials: origins != "*",
	})
}
