package handlers

import (
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

// Register вешает страницу, пробы и API редактора на приложение.
func Register(app *fiber.App, h *EditorHandler, sessions *session.Manager) {
	app.Get("/", EditorPage)

	app.Get("/health/live", LivenessProbe)
	app.Get("/health/ready", ReadinessProbe(sessions))

	api := app.Group("/api/v1")

	api.Post("/sessions", h.CreateSession)
	api.Get("/sessions/:id", h.GetSession)
	api.Delete("/sessions/:id", h.DeleteSession)

	s := api.Group("/sessions/:id")

	// Tools & view
	s.Post("/tool", h.SetTool)
	s.Post("/wheel", h.Wheel)
	s.Post("/zoom", h.SetZoom)
	s.Post("/view/reset", h.ResetView)

	// Pointer events
	s.Post("/pointer/down", h.PointerDown)
	s.Post("/pointer/move", h.PointerMove)
	s.Post("/pointer/up", h.PointerUp)

	// Selection & entities
	s.Post("/select", h.Select)
	s.Post("/selection/clear", h.ClearSelection)
	s.Delete("/selection", h.DeleteSelected)
	s.Get("/room/edit", h.RoomEditForm)
	s.Post("/room/edit", h.EditRoom)
	s.Post("/layers/:type/toggle", h.ToggleLayer)

	// Output
	s.Get("/scene.svg", h.SceneSVG)
	s.Get("/scene.png", h.ScenePNG)
	s.Get("/status", h.Status)
	s.Get("/properties", h.Properties)
	s.Get("/history", h.History)

	// Inert placeholders
	s.Post("/save", h.Save)
	s.Post("/share", h.Share)
}
