package geometry

import (
	"math"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Constants
// ============================================================

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	snapStep = math.Pi / 4
)

// ============================================================
// Coordinate mapping
// ============================================================

// ToLogical переводит точку области отрисовки в логические координаты.
// Без области отрисовки (p == nil) возвращается начало координат.
func ToLogical(p *models.Point, vp models.Viewport) models.Point {
	if p == nil {
		return models.Point{}
	}
	zoom := vp.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return models.Point{
		X: (p.X - vp.Pan.X) / zoom,
		Y: (p.Y - vp.Pan.Y) / zoom,
	}
}

// ToScreen выполняет обратное преобразование.
func ToScreen(p models.Point, vp models.Viewport) models.Point {
	return models.Point{
		X: p.X*vp.Zoom + vp.Pan.X,
		Y: p.Y*vp.Zoom + vp.Pan.Y,
	}
}

// ============================================================
// Snapping
// ============================================================

// SnapAngle поворачивает отрезок anchor→p к ближайшему кратному 45°,
// сохраняя длину. Нулевой отрезок возвращается как есть.
func SnapAngle(anchor, p models.Point) models.Point {
	d := Distance(anchor, p)
	if d == 0 {
		return p
	}

	theta := math.Atan2(p.Y-anchor.Y, p.X-anchor.X)
	snapped := math.Round(theta/snapStep) * snapStep

	return models.Point{
		X: anchor.X + d*math.Cos(snapped),
		Y: anchor.Y + d*math.Sin(snapped),
	}
}

// ============================================================
// Rectangles & metrics
// ============================================================

// Rect описывает прямоугольник по осям.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BoundingRect строит прямоугольник по двум противоположным углам.
func BoundingRect(a, b models.Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// RoomArea переводит логическую площадь в м² с одним знаком после запятой.
func RoomArea(width, height float64) float64 {
	return math.Round(width*height/100*10) / 10
}

// Meters переводит логическую длину в метры (1 м = 10 единиц), один знак.
func Meters(length float64) float64 {
	return math.Round(length) / 10
}

// ClampZoom ограничивает масштаб диапазоном [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return clamp(z, MinZoom, MaxZoom)
}

func Distance(p1, p2 models.Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
