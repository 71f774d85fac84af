package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"

	"github.com/zyedidia/generic/mapset"
)

// ============================================================
// Renderer
// ============================================================

const (
	wallStroke     = "#1f2937"
	doorStroke     = "#059669"
	selectedStroke = "#F59E0B"
	previewStroke  = "#2563EB"
	doorStrokeW    = 2.0
	roomStrokeW    = 2.0
	roomFillAlpha  = 0.1
)

// Renderer: чистая проекция Snapshot в векторную сцену. Своего состояния,
// кроме размеров области отрисовки, не хранит.
type Renderer struct {
	width  float64
	height float64
}

func NewRenderer(width, height float64) *Renderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	return &Renderer{width: width, height: height}
}

// Render собирает SVG из снимка состояния редактора.
func (r *Renderer) Render(snap *models.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("snapshot is nil")
	}

	visible := visibleLayers(snap)

	var elements []string
	if visible.Has(models.LayerWalls) {
		elements = append(elements, r.renderWalls(snap)...)
	}
	if visible.Has(models.LayerDoors) {
		elements = append(elements, r.renderDoors(snap)...)
	}
	if visible.Has(models.LayerRooms) {
		elements = append(elements, r.renderRooms(snap)...)
	}
	elements = append(elements, r.renderPreview(snap)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(r.width), formatFloat(r.height), formatFloat(r.width), formatFloat(r.height)))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`  <g id="viewport" transform="translate(%s %s) scale(%s)">`,
		formatFloat(snap.Viewport.Pan.X), formatFloat(snap.Viewport.Pan.Y), formatFloat(snap.Viewport.Zoom)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("    ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString("  </g>\n")
	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

func visibleLayers(snap *models.Snapshot) mapset.Set[models.LayerType] {
	visible := mapset.New[models.LayerType]()
	for _, t := range []models.LayerType{models.LayerWalls, models.LayerDoors, models.LayerRooms} {
		if snap.LayerVisible(t) {
			visible.Put(t)
		}
	}
	return visible
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderWalls(snap *models.Snapshot) []string {
	var out []string

	for _, w := range snap.Walls {
		stroke := wallStroke
		if snap.Selection.Is(models.KindWall, w.ID) {
			stroke = selectedStroke
		}
		out = append(out, fmt.Sprintf(`<line data-kind="wall" data-id="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-linecap="square" />`,
			attr(w.ID), formatFloat(w.Start.X), formatFloat(w.Start.Y), formatFloat(w.End.X), formatFloat(w.End.Y),
			stroke, formatFloat(w.Thickness)))
	}

	return out
}

func (r *Renderer) renderDoors(snap *models.Snapshot) []string {
	var out []string

	for _, d := range snap.Doors {
		stroke := doorStroke
		if snap.Selection.Is(models.KindDoor, d.ID) {
			stroke = selectedStroke
		}
		leaf, swing := doorGlyph(d)
		out = append(out, fmt.Sprintf(`<path data-kind="door" data-id="%s" d="M %s L %s A %s %s 0 0 1 %s" fill="none" stroke="%s" stroke-width="%s" />`,
			attr(d.ID), formatPoint(d.Position), formatPoint(leaf),
			formatFloat(d.Width), formatFloat(d.Width), formatPoint(swing),
			stroke, formatFloat(doorStrokeW)))
	}

	return out
}

func (r *Renderer) renderRooms(snap *models.Snapshot) []string {
	var out []string

	for _, room := range snap.Rooms {
		color := room.DisplayColor()
		stroke := color
		strokeW := roomStrokeW
		if snap.Selection.Is(models.KindRoom, room.ID) {
			stroke = selectedStroke
			strokeW = roomStrokeW + 1
		}
		center := room.Center()

		var g strings.Builder
		g.WriteString(fmt.Sprintf(`<g data-kind="room" data-id="%s">`, attr(room.ID)))
		g.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%s" />`,
			formatFloat(room.X), formatFloat(room.Y), formatFloat(room.Width), formatFloat(room.Height),
			color, formatFloat(roomFillAlpha), stroke, formatFloat(strokeW)))
		g.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="12" fill="%s" pointer-events="none">%s</text>`,
			formatFloat(center.X), formatFloat(center.Y), color, html.EscapeString(room.Name)))
		g.WriteString(`</g>`)

		out = append(out, g.String())
	}

	return out
}

// renderPreview рисует пунктиром будущую стену или комнату.
func (r *Renderer) renderPreview(snap *models.Snapshot) []string {
	if !snap.Gesture.Drawing || snap.Gesture.Start == nil {
		return nil
	}
	start := *snap.Gesture.Start

	switch snap.Tool {
	case models.ToolWall:
		end := geometry.SnapAngle(start, snap.Mouse)
		return []string{fmt.Sprintf(`<line id="preview" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="3" stroke-dasharray="6 4" />`,
			formatFloat(start.X), formatFloat(start.Y), formatFloat(end.X), formatFloat(end.Y), previewStroke)}
	case models.ToolRoom:
		rect := geometry.BoundingRect(start, snap.Mouse)
		return []string{fmt.Sprintf(`<rect id="preview" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="6 4" />`,
			formatFloat(rect.X), formatFloat(rect.Y), formatFloat(rect.Width), formatFloat(rect.Height), previewStroke)}
	}
	return nil
}

// ============================================================
// Geometry helpers
// ============================================================

// doorGlyph возвращает конец полотна двери и конец дуги открывания (90°).
func doorGlyph(d models.Door) (models.Point, models.Point) {
	rad := d.Angle * math.Pi / 180
	leaf := models.Point{
		X: d.Position.X + d.Width*math.Cos(rad),
		Y: d.Position.Y + d.Width*math.Sin(rad),
	}
	swing := models.Point{
		X: d.Position.X + d.Width*math.Cos(rad+math.Pi/2),
		Y: d.Position.Y + d.Width*math.Sin(rad+math.Pi/2),
	}
	return leaf, swing
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(roundTo(val, 4), 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}

func roundTo(val float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(val*pow) / pow
}

func attr(s string) string {
	return html.EscapeString(s)
}
