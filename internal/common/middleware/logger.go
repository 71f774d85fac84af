package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет access-лог; события указателя (move) идут очень часто,
// поэтому их можно отключить через quietPointer.
func Logger(quietPointer bool) fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Next: func(c fiber.Ctx) bool {
			return quietPointer && strings.HasSuffix(c.Path(), "/pointer/move")
		},
	})
}
