package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS открывает API редактора для указанных источников; пустой список разрешает любой источник.
func CORS(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: []string{"Content-Type"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete},
	})
}
