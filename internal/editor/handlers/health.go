package handlers

import (
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe сообщает готовность и число открытых сессий редактора.
func ReadinessProbe(sessions *session.Manager) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ready",
			"sessions": sessions.Len(),
		})
	}
}
