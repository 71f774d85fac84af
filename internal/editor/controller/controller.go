package controller

import (
	"fmt"
	"math"
	"regexp"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"

	"github.com/google/uuid"
)

// ============================================================
// Defaults
// ============================================================

const (
	DefaultDoorWidth     = 20.0
	DefaultDoorAngle     = 0.0
	DefaultWallThickness = 3.0

	zoomOutFactor = 0.9
	zoomInFactor  = 1.1
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ============================================================
// Editor
// ============================================================

// Editor владеет всеми коллекциями сущностей, инструментом, видом и жестом.
// Не потокобезопасен: вызовы сериализует владелец (см. session).
type Editor struct {
	rooms  []models.Room
	walls  []models.Wall
	doors  []models.Door
	layers []models.Layer

	tool      models.Tool
	viewport  models.Viewport
	selection models.Selection

	mode   models.Mode
	anchor *models.Point
	mouse  models.Point

	newID   func() string
	initial *Plan
}

type Option func(*Editor)

// WithIDGenerator подменяет генератор идентификаторов (для тестов).
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithPlan заполняет редактор начальным планом.
func WithPlan(plan Plan) Option {
	return func(e *Editor) {
		e.initial = &plan
	}
}

// New создаёт пустой редактор с инструментом select.
func New(opts ...Option) *Editor {
	e := &Editor{
		layers:   models.DefaultLayers(),
		tool:     models.ToolSelect,
		viewport: models.DefaultViewport(),
		mode:     models.ModeIdle,
		newID:    newTimeID,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.initial != nil {
		e.load(*e.initial)
		e.initial = nil
	}
	return e
}

func newTimeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ============================================================
// Tools & view controls
// ============================================================

// SetTool переключает инструмент. Незавершённый жест не сбрасывается.
func (e *Editor) SetTool(name string) error {
	tool, ok := models.ParseTool(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	e.tool = tool
	return nil
}

func (e *Editor) Tool() models.Tool {
	return e.tool
}

func (e *Editor) Viewport() models.Viewport {
	return e.viewport
}

func (e *Editor) Selection() models.Selection {
	return e.selection
}

// SetZoom выставляет масштаб со слайдера с ограничением диапазона.
func (e *Editor) SetZoom(z float64) error {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return ErrInvalidZoom
	}
	e.viewport.Zoom = geometry.ClampZoom(z)
	return nil
}

// ResetView возвращает вид в исходное положение.
func (e *Editor) ResetView() {
	e.viewport = models.DefaultViewport()
}

// Wheel масштабирует вид относительно начала координат области отрисовки.
func (e *Editor) Wheel(deltaY float64) {
	factor := zoomInFactor
	if deltaY > 0 {
		factor = zoomOutFactor
	}
	e.viewport.Zoom = geometry.ClampZoom(e.viewport.Zoom * factor)
}

// ============================================================
// Pointer gestures
// ============================================================

// PointerDown начинает жест в зависимости от инструмента. Возвращает ссылку
// на созданную дверь, если она появилась.
func (e *Editor) PointerDown(ev models.PointerEvent) models.EntityRef {
	pos := geometry.ToLogical(ev.Position, e.viewport)
	e.mouse = pos

	switch e.tool {
	case models.ToolSelect:
		if ev.Button == models.ButtonMiddle {
			e.anchor = nil
			e.mode = models.ModePanning
		}
	case models.ToolWall, models.ToolRoom:
		anchor := pos
		e.anchor = &anchor
		e.mode = models.ModeDrawing
	case models.ToolDoor:
		door := models.Door{
			ID:       e.newID(),
			Position: pos,
			Width:    DefaultDoorWidth,
			Angle:    DefaultDoorAngle,
		}
		e.doors = append(e.doors, door)
		return models.EntityRef{Kind: models.KindDoor, ID: door.ID}
	case models.ToolCorridor:
		// TODO: рисование коридора не определено, инструмент пока ничего не делает.
	}
	return models.EntityRef{}
}

// PointerMove обновляет позицию мыши; при панорамировании сдвигает вид
// на сырое смещение в пикселях, без учёта масштаба.
func (e *Editor) PointerMove(ev models.PointerEvent) {
	e.mouse = geometry.ToLogical(ev.Position, e.viewport)

	if e.mode == models.ModePanning {
		e.viewport.Pan = e.viewport.Pan.Add(ev.Delta)
	}
}

// PointerUp завершает жест: панорамирование или создание стены/комнаты.
// Состояние жеста сбрасывается в любом случае. Возвращает ссылку на
// созданную сущность, если она появилась.
func (e *Editor) PointerUp(ev models.PointerEvent) models.EntityRef {
	anchor, mode := e.anchor, e.mode
	e.anchor = nil
	e.mode = models.ModeIdle

	if mode != models.ModeDrawing {
		return models.EntityRef{}
	}

	end := geometry.ToLogical(ev.Position, e.viewport)
	e.mouse = end

	if anchor == nil {
		return models.EntityRef{}
	}
	switch e.tool {
	case models.ToolWall:
		return e.addWall(*anchor, end)
	case models.ToolRoom:
		return e.addRoom(*anchor, end)
	}
	return models.EntityRef{}
}

func (e *Editor) addWall(start, raw models.Point) models.EntityRef {
	w := models.Wall{
		ID:        e.newID(),
		Start:     start,
		End:       geometry.SnapAngle(start, raw),
		Thickness: DefaultWallThickness,
	}
	e.walls = append(e.walls, w)
	return models.EntityRef{Kind: models.KindWall, ID: w.ID}
}

func (e *Editor) addRoom(a, b models.Point) models.EntityRef {
	rect := geometry.BoundingRect(a, b)
	room := models.Room{
		ID:     e.newID(),
		X:      rect.X,
		Y:      rect.Y,
		Width:  rect.Width,
		Height: rect.Height,
		Type:   models.RoomGeneric,
		Name:   fmt.Sprintf("Room %d", len(e.rooms)+1),
		Area:   geometry.RoomArea(rect.Width, rect.Height),
	}
	e.rooms = append(e.rooms, room)
	return models.EntityRef{Kind: models.KindRoom, ID: room.ID}
}

// ============================================================
// Selection
// ============================================================

// Select делает сущность единственной выбранной. Работает только с select.
func (e *Editor) Select(kindName, id string) error {
	kind, ok := models.ParseEntityKind(kindName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kindName)
	}
	if e.tool != models.ToolSelect {
		return nil
	}
	if !e.exists(kind, id) {
		return fmt.Errorf("%w: %s %s", ErrEntityNotFound, kind, id)
	}
	e.selection = models.Selection{Kind: kind, ID: id}
	return nil
}

// ClearSelection снимает выбор (клик по пустому месту холста).
func (e *Editor) ClearSelection() {
	if e.tool != models.ToolSelect {
		return
	}
	e.selection = models.NoSelection()
}

// DeleteSelected удаляет выбранную сущность. Возвращает false, если
// ничего не выбрано.
func (e *Editor) DeleteSelected() bool {
	sel := e.selection
	switch sel.Kind {
	case models.KindRoom:
		e.rooms = removeByID(e.rooms, sel.ID, func(r models.Room) string { return r.ID })
	case models.KindWall:
		e.walls = removeByID(e.walls, sel.ID, func(w models.Wall) string { return w.ID })
	case models.KindDoor:
		e.doors = removeByID(e.doors, sel.ID, func(d models.Door) string { return d.ID })
	default:
		return false
	}
	e.selection = models.NoSelection()
	return true
}

func (e *Editor) exists(kind models.EntityKind, id string) bool {
	switch kind {
	case models.KindRoom:
		return indexByID(e.rooms, id, func(r models.Room) string { return r.ID }) >= 0
	case models.KindWall:
		return indexByID(e.walls, id, func(w models.Wall) string { return w.ID }) >= 0
	case models.KindDoor:
		return indexByID(e.doors, id, func(d models.Door) string { return d.ID }) >= 0
	}
	return false
}

// ============================================================
// Room editing
// ============================================================

// RoomEditForm возвращает имя и текущий цвет выбранной комнаты.
func (e *Editor) RoomEditForm() (models.EditForm, error) {
	room, err := e.selectedRoom()
	if err != nil {
		return models.EditForm{}, err
	}
	return models.EditForm{Name: room.Name, Color: room.DisplayColor()}, nil
}

// EditRoom переименовывает выбранную комнату и переводит её в тип custom.
// Цвет хранится только в этой комнате; пустой цвет сохраняет текущий.
func (e *Editor) EditRoom(name, color string) error {
	room, err := e.selectedRoom()
	if err != nil {
		return err
	}
	if color == "" {
		color = room.DisplayColor()
	}
	if !colorPattern.MatchString(color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}

	room.Name = name
	room.Type = models.RoomCustom
	room.Color = color

	idx := indexByID(e.rooms, room.ID, func(r models.Room) string { return r.ID })
	e.rooms[idx] = *room
	return nil
}

func (e *Editor) selectedRoom() (*models.Room, error) {
	if e.selection.Kind != models.KindRoom {
		return nil, ErrNoRoomSelected
	}
	idx := indexByID(e.rooms, e.selection.ID, func(r models.Room) string { return r.ID })
	if idx < 0 {
		return nil, ErrNoRoomSelected
	}
	room := e.rooms[idx]
	return &room, nil
}

// ============================================================
// Layers
// ============================================================

// ToggleLayer переключает видимость слоя. На коллекции не влияет.
func (e *Editor) ToggleLayer(name string) error {
	t, ok := models.ParseLayerType(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	for i := range e.layers {
		if e.layers[i].Type == t {
			e.layers[i].Visible = !e.layers[i].Visible
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// ============================================================
// State
// ============================================================

// State возвращает копию состояния для рендера и ответа API.
func (e *Editor) State() models.Snapshot {
	snap := models.Snapshot{
		Rooms:     append([]models.Room{}, e.rooms...),
		Walls:     append([]models.Wall{}, e.walls...),
		Doors:     append([]models.Door{}, e.doors...),
		Layers:    append([]models.Layer{}, e.layers...),
		Tool:      e.tool,
		Viewport:  e.viewport,
		Selection: e.selection,
		Mode:      e.mode,
		Mouse:     e.mouse,
	}
	if e.mode == models.ModeDrawing {
		snap.Gesture.Drawing = true
		if e.anchor != nil {
			anchor := *e.anchor
			snap.Gesture.Start = &anchor
		}
	}
	return snap
}

// ============================================================
// Helpers
// ============================================================

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	out := items[:0]
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out
}
