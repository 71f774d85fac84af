package models

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add возвращает сумму двух точек.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub возвращает разность двух точек.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// ============================================================
// Entities
// ============================================================

type Wall struct {
	ID        string  `json:"id"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Thickness float64 `json:"thickness"`
}

// Door: точка + ориентация. WallID нигде не заполняется и не проверяется.
type Door struct {
	ID       string  `json:"id"`
	Position Point   `json:"position"`
	Width    float64 `json:"width"`
	Angle    float64 `json:"angle"`
	WallID   string  `json:"wallId,omitempty"`
}

type RoomType string

const (
	RoomLiving   RoomType = "living"
	RoomKitchen  RoomType = "kitchen"
	RoomBedroom  RoomType = "bedroom"
	RoomBathroom RoomType = "bathroom"
	RoomCorridor RoomType = "corridor"
	RoomGeneric  RoomType = "room"
	RoomCustom   RoomType = "custom"
)

// Room: прямоугольник по осям. Area считается один раз при создании.
type Room struct {
	ID     string   `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Type   RoomType `json:"type"`
	Name   string   `json:"name"`
	Area   float64  `json:"area"`
	Color  string   `json:"color,omitempty"`
}

// Center возвращает центр прямоугольника комнаты.
func (r Room) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

const defaultRoomColor = "#6B7280"

var roomPalette = map[RoomType]string{
	RoomLiving:   "#2563EB",
	RoomKitchen:  "#059669",
	RoomBedroom:  "#7C3AED",
	RoomBathroom: "#DC2626",
	RoomCorridor: "#6B7280",
}

// DisplayColor возвращает цвет отрисовки комнаты.
func (r Room) DisplayColor() string {
	if r.Type == RoomCustom && r.Color != "" {
		return r.Color
	}
	if c, ok := roomPalette[r.Type]; ok {
		return c
	}
	return defaultRoomColor
}

// ============================================================
// Layers
// ============================================================

type LayerType string

const (
	LayerWalls LayerType = "walls"
	LayerDoors LayerType = "doors"
	LayerRooms LayerType = "rooms"
)

// ParseLayerType проверяет имя слоя.
func ParseLayerType(s string) (LayerType, bool) {
	switch LayerType(s) {
	case LayerWalls, LayerDoors, LayerRooms:
		return LayerType(s), true
	}
	return "", false
}

type Layer struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Visible bool      `json:"visible"`
	Type    LayerType `json:"type"`
}

// DefaultLayers возвращает три фиксированных слоя, все видимые.
func DefaultLayers() []Layer {
	return []Layer{
		{ID: "layer-walls", Name: "Walls", Visible: true, Type: LayerWalls},
		{ID: "layer-doors", Name: "Doors", Visible: true, Type: LayerDoors},
		{ID: "layer-rooms", Name: "Rooms", Visible: true, Type: LayerRooms},
	}
}

// ============================================================
// Tools
// ============================================================

type Tool string

const (
	ToolSelect   Tool = "select"
	ToolWall     Tool = "wall"
	ToolDoor     Tool = "door"
	ToolRoom     Tool = "room"
	ToolCorridor Tool = "corridor"
)

// ParseTool проверяет имя инструмента.
func ParseTool(s string) (Tool, bool) {
	switch Tool(s) {
	case ToolSelect, ToolWall, ToolDoor, ToolRoom, ToolCorridor:
		return Tool(s), true
	}
	return "", false
}

// ============================================================
// Selection
// ============================================================

type EntityKind string

const (
	KindNone EntityKind = ""
	KindRoom EntityKind = "room"
	KindWall EntityKind = "wall"
	KindDoor EntityKind = "door"
)

// ParseEntityKind проверяет тип сущности для выбора.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(s) {
	case KindRoom, KindWall, KindDoor:
		return EntityKind(s), true
	}
	return KindNone, false
}

// Selection: либо ничего (нулевое значение), либо ровно одна сущность.
type Selection struct {
	Kind EntityKind `json:"kind,omitempty"`
	ID   string     `json:"id,omitempty"`
}

// EntityRef указывает на сущность, созданную жестом. Нулевое значение: ничего не создано.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

func (r EntityRef) IsZero() bool {
	return r.Kind == KindNone
}

func NoSelection() Selection {
	return Selection{}
}

func (s Selection) IsNone() bool {
	return s.Kind == KindNone
}

// Is сообщает, выбрана ли указанная сущность.
func (s Selection) Is(kind EntityKind, id string) bool {
	return s.Kind == kind && s.ID == id
}

// ============================================================
// Viewport & interaction
// ============================================================

type Viewport struct {
	Pan  Point   `json:"pan"`
	Zoom float64 `json:"zoom"`
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

type Mode string

const (
	ModeIdle    Mode = "idle"
	ModePanning Mode = "panning"
	ModeDrawing Mode = "drawing"
)

type MouseButton int

const (
	ButtonPrimary MouseButton = 0
	ButtonMiddle  MouseButton = 1
	ButtonRight   MouseButton = 2
)

// PointerEvent: событие указателя в координатах области отрисовки.
// Position == nil означает, что области отрисовки нет.
type PointerEvent struct {
	Position *Point      `json:"position,omitempty"`
	Delta    Point       `json:"delta"`
	Button   MouseButton `json:"button"`
}

// Gesture: незавершённый жест рисования.
type Gesture struct {
	Drawing bool   `json:"isDrawing"`
	Start   *Point `json:"drawingStart"`
}

// ============================================================
// Snapshot
// ============================================================

// Snapshot: копия всего состояния редактора, передаётся рендеру и в JSON.
type Snapshot struct {
	Rooms     []Room    `json:"rooms"`
	Walls     []Wall    `json:"walls"`
	Doors     []Door    `json:"doors"`
	Layers    []Layer   `json:"layers"`
	Tool      Tool      `json:"tool"`
	Viewport  Viewport  `json:"viewport"`
	Selection Selection `json:"selection"`
	Mode      Mode      `json:"mode"`
	Gesture   Gesture   `json:"gesture"`
	Mouse     Point     `json:"mousePos"`
}

// LayerVisible сообщает, виден ли слой данного типа.
func (s *Snapshot) LayerVisible(t LayerType) bool {
	for _, l := range s.Layers {
		if l.Type == t {
			return l.Visible
		}
	}
	return true
}

// FindRoom ищет комнату по id.
func (s *Snapshot) FindRoom(id string) (Room, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// ============================================================
// Projections
// ============================================================

type Status struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	ZoomPercent int    `json:"zoomPercent"`
	Tool        Tool   `json:"tool"`
	Selected    string `json:"selected"`
	Ready       bool   `json:"ready"`
}

// Properties: данные панели свойств выбранной комнаты.
type Properties struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    RoomType `json:"type"`
	Area    float64  `json:"area"`
	WidthM  float64  `json:"widthM"`
	LengthM float64  `json:"lengthM"`
	Color   string   `json:"color"`
}

// EditForm: предзаполненные поля формы редактирования комнаты.
type EditForm struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
