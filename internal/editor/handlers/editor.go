package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"floorplan-editor/internal/common/logging"
	"floorplan-editor/internal/editor/controller"
	"floorplan-editor/internal/editor/journal"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/render"
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ============================================================
// Editor Handler
// ============================================================

var (
	errSessionNotFound = errors.New("session not found")
	errBadPayload      = errors.New("invalid JSON payload")
)

type EditorHandler struct {
	sessions *session.Manager
	journal  *journal.Journal
	renderer *render.Renderer
	log      *logrus.Entry
}

// NewEditorHandler собирает обработчики API редактора. journal может быть nil.
func NewEditorHandler(sessions *session.Manager, j *journal.Journal, renderer *render.Renderer) *EditorHandler {
	return &EditorHandler{
		sessions: sessions,
		journal:  j,
		renderer: renderer,
		log:      logging.For("editor"),
	}
}

type stateResponse struct {
	Session    string             `json:"session"`
	State      models.Snapshot    `json:"state"`
	Status     models.Status      `json:"status"`
	StatusLine string             `json:"statusLine"`
	Properties *models.Properties `json:"properties,omitempty"`
}

type toolPayload struct {
	Tool string `json:"tool"`
}

type pointerPayload struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	DX     float64  `json:"dx"`
	DY     float64  `json:"dy"`
	Button int      `json:"button"`
}

type wheelPayload struct {
	DeltaY float64 `json:"deltaY"`
}

type zoomPayload struct {
	Zoom *float64 `json:"zoom"`
}

type selectPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type roomEditPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// step выполняет одну операцию над редактором. detail пишется в журнал, если record.
type step func(e *controller.Editor) (detail string, record bool, err error)

// ============================================================
// Sessions
// ============================================================

// CreateSession открывает новую сессию редактора.
func (h *EditorHandler) CreateSession(c fiber.Ctx) error {
	s := h.sessions.Create()
	h.log.WithField("session_id", s.ID).Info("Session created")
	h.record(c.Context(), s.ID, "session.create", "")

	var snap models.Snapshot
	_ = s.Do(func(e *controller.Editor) error {
		snap = e.State()
		return nil
	})
	return c.Status(fiber.StatusCreated).JSON(h.stateResponse(s.ID, &snap))
}

// GetSession возвращает текущее состояние сессии.
func (h *EditorHandler) GetSession(c fiber.Ctx) error {
	return h.apply(c, "", func(e *controller.Editor) (string, bool, error) {
		return "", false, nil
	})
}

// DeleteSession закрывает сессию и чистит её журнал.
func (h *EditorHandler) DeleteSession(c fiber.Ctx) error {
	id := c.Params("id")
	if !h.sessions.Delete(id) {
		return h.fail(c, errSessionNotFound)
	}
	if h.journal != nil {
		if err := h.journal.Forget(c.Context(), id); err != nil {
			h.log.WithError(err).WithField("session_id", id).Warn("Failed to forget journal")
		}
	}
	h.log.WithField("session_id", id).Info("Session closed")
	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================
// Tools & view
// ============================================================

func (h *EditorHandler) SetTool(c fiber.Ctx) error {
	var p toolPayload
	if err := decode(c, &p); err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "tool.set", func(e *controller.Editor) (string, bool, error) {
		return p.Tool, true, e.SetTool(p.Tool)
	})
}

func (h *EditorHandler) Wheel(c fiber.Ctx) error {
	var p wheelPayload
	if err := decode(c, &p); err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "view.wheel", func(e *controller.Editor) (string, bool, error) {
		e.Wheel(p.DeltaY)
		return formatZoom(e), true, nil
	})
}

func (h *EditorHandler) SetZoom(c fiber.Ctx) error {
	var p zoomPayload
	if err := decode(c, &p); err != nil {
		return h.fail(c, err)
	}
	if p.Zoom == nil {
		return h.fail(c, controller.ErrInvalidZoom)
	}
	return h.apply(c, "view.zoom", func(e *controller.Editor) (string, bool, error) {
		if err := e.SetZoom(*p.Zoom); err != nil {
			return "", false, err
		}
		return formatZoom(e), true, nil
	})
}

func (h *EditorHandler) ResetView(c fiber.Ctx) error {
	return h.apply(c, "view.reset", func(e *controller.Editor) (string, bool, error) {
		e.ResetView()
		return "", true, nil
	})
}

// ============================================================
// Pointer events
// ============================================================

func (h *EditorHandler) PointerDown(c fiber.Ctx) error {
	ev, err := decodePointer(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "pointer.down", func(e *controller.Editor) (string, bool, error) {
		created := e.PointerDown(ev)
		if created.IsZero() {
			return "", false, nil
		}
		return string(created.Kind) + " " + created.ID, true, nil
	})
}

func (h *EditorHandler) PointerMove(c fiber.Ctx) error {
	ev, err := decodePointer(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "pointer.move", func(e *controller.Editor) (string, bool, error) {
		e.PointerMove(ev)
		return "", false, nil
	})
}

func (h *EditorHandler) PointerUp(c fiber.Ctx) error {
	ev, err := decodePointer(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "pointer.up", func(e *controller.Editor) (string, bool, error) {
		created := e.PointerUp(ev)
		if created.IsZero() {
			return "", false, nil
		}
		return string(created.Kind) + " " + created.ID, true, nil
	})
}

// ============================================================
// Selection & entities
// ============================================================

func (h *EditorHandler) Select(c fiber.Ctx) error {
	var p selectPayload
	if err := decode(c, &p); err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "selection.set", func(e *controller.Editor) (string, bool, error) {
		before := e.Selection()
		if err := e.Select(p.Kind, p.ID); err != nil {
			return "", false, err
		}
		return p.Kind + " " + p.ID, e.Selection() != before, nil
	})
}

func (h *EditorHandler) ClearSelection(c fiber.Ctx) error {
	return h.apply(c, "selection.clear", func(e *controller.Editor) (string, bool, error) {
		before := e.Selection()
		e.ClearSelection()
		return "", !before.IsNone() && e.Selection().IsNone(), nil
	})
}

func (h *EditorHandler) DeleteSelected(c fiber.Ctx) error {
	return h.apply(c, "selection.delete", func(e *controller.Editor) (string, bool, error) {
		sel := e.Selection()
		if !e.DeleteSelected() {
			return "", false, nil
		}
		return string(sel.Kind) + " " + sel.ID, true, nil
	})
}

// RoomEditForm отдаёт предзаполненную форму редактирования выбранной комнаты.
func (h *EditorHandler) RoomEditForm(c fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return h.fail(c, errSessionNotFound)
	}

	var form models.EditForm
	err := s.Do(func(e *controller.Editor) error {
		var err error
		form, err = e.RoomEditForm()
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(form)
}

func (h *EditorHandler) EditRoom(c fiber.Ctx) error {
	var p roomEditPayload
	if err := decode(c, &p); err != nil {
		return h.fail(c, err)
	}
	return h.apply(c, "room.edit", func(e *controller.Editor) (string, bool, error) {
		if err := e.EditRoom(p.Name, p.Color); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s", p.Name, p.Color), true, nil
	})
}

func (h *EditorHandler) ToggleLayer(c fiber.Ctx) error {
	layer := c.Params("type")
	return h.apply(c, "layer.toggle", func(e *controller.Editor) (string, bool, error) {
		return layer, true, e.ToggleLayer(layer)
	})
}

// ============================================================
// Output surface
// ============================================================

// SceneSVG отдаёт сцену, пересобранную из текущего состояния.
func (h *EditorHandler) SceneSVG(c fiber.Ctx) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return h.fail(c, err)
	}

	svg, err := h.renderer.Render(&snap)
	if err != nil {
		h.log.WithError(err).Error("Render failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	c.Set("Cache-Control", "no-store")
	return c.SendString(svg)
}

func (h *EditorHandler) ScenePNG(c fiber.Ctx) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return h.fail(c, err)
	}

	data, err := h.renderer.RenderPNG(&snap)
	if err != nil {
		h.log.WithError(err).Error("PNG render failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Cache-Control", "no-store")
	return c.Send(data)
}

func (h *EditorHandler) Status(c fiber.Ctx) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return h.fail(c, err)
	}
	st := render.Status(&snap)
	return c.JSON(fiber.Map{"status": st, "statusLine": render.StatusLine(st)})
}

func (h *EditorHandler) Properties(c fiber.Ctx) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return h.fail(c, err)
	}
	props, ok := render.Properties(&snap)
	if !ok {
		return h.fail(c, controller.ErrNoRoomSelected)
	}
	return c.JSON(props)
}

// History отдаёт журнал операций сессии.
func (h *EditorHandler) History(c fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := h.sessions.Get(id); !ok {
		return h.fail(c, errSessionNotFound)
	}
	if h.journal == nil {
		return c.JSON(fiber.Map{"entries": []journal.Entry{}})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.journal.List(c.Context(), id, limit)
	if err != nil {
		h.log.WithError(err).WithField("session_id", id).Error("Failed to list journal")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "journal unavailable"})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Save и Share присутствуют в интерфейсе, но ничего не делают.
func (h *EditorHandler) Save(c fiber.Ctx) error {
	return h.inert(c)
}

func (h *EditorHandler) Share(c fiber.Ctx) error {
	return h.inert(c)
}

func (h *EditorHandler) inert(c fiber.Ctx) error {
	if _, ok := h.sessions.Get(c.Params("id")); !ok {
		return h.fail(c, errSessionNotFound)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "noop"})
}

// ============================================================
// Helpers
// ============================================================

// apply выполняет шаг под блокировкой сессии, пишет журнал и отвечает состоянием.
func (h *EditorHandler) apply(c fiber.Ctx, op string, fn step) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return h.fail(c, errSessionNotFound)
	}

	var (
		snap   models.Snapshot
		detail string
		record bool
	)
	err := s.Do(func(e *controller.Editor) error {
		var err error
		detail, record, err = fn(e)
		if err != nil {
			return err
		}
		snap = e.State()
		return nil
	})
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"session_id": id, "op": op}).Debug("Operation rejected")
		return h.fail(c, err)
	}

	if op != "" && record {
		h.record(c.Context(), s.ID, op, detail)
	}
	return c.JSON(h.stateResponse(s.ID, &snap))
}

func (h *EditorHandler) snapshot(c fiber.Ctx) (models.Snapshot, error) {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return models.Snapshot{}, errSessionNotFound
	}
	var snap models.Snapshot
	_ = s.Do(func(e *controller.Editor) error {
		snap = e.State()
		return nil
	})
	return snap, nil
}

func (h *EditorHandler) record(ctx context.Context, sessionID, op, detail string) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Record(ctx, sessionID, op, detail); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"session_id": sessionID, "op": op}).Warn("Failed to journal operation")
	}
}

func (h *EditorHandler) stateResponse(id string, snap *models.Snapshot) stateResponse {
	st := render.Status(snap)
	resp := stateResponse{
		Session:    id,
		State:      *snap,
		Status:     st,
		StatusLine: render.StatusLine(st),
	}
	if props, ok := render.Properties(snap); ok {
		resp.Properties = &props
	}
	return resp
}

// fail переводит ошибку в HTTP-ответ.
func (h *EditorHandler) fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, controller.ErrEntityNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, controller.ErrNoRoomSelected):
		status = fiber.StatusConflict
	case errors.Is(err, errBadPayload),
		errors.Is(err, controller.ErrUnknownTool),
		errors.Is(err, controller.ErrUnknownLayer),
		errors.Is(err, controller.ErrUnknownKind),
		errors.Is(err, controller.ErrInvalidColor),
		errors.Is(err, controller.ErrInvalidZoom):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return fmt.Errorf("%w: body required", errBadPayload)
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

func decodePointer(c fiber.Ctx) (models.PointerEvent, error) {
	var p pointerPayload
	if err := decode(c, &p); err != nil {
		return models.PointerEvent{}, err
	}

	ev := models.PointerEvent{
		Delta:  models.Point{X: p.DX, Y: p.DY},
		Button: models.MouseButton(p.Button),
	}
	if p.X != nil && p.Y != nil {
		ev.Position = &models.Point{X: *p.X, Y: *p.Y}
	}
	return ev, nil
}

func formatZoom(e *controller.Editor) string {
	return strconv.FormatFloat(e.Viewport().Zoom, 'f', 3, 64)
}
