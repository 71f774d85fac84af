package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"sync"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// ============================================================
// Raster export
// ============================================================

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// RenderPNG растеризует ту же сцену, что и Render, в PNG.
func (r *Renderer) RenderPNG(snap *models.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}

	ttf, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	dc := gg.NewContext(int(r.width), int(r.height))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	dc.Push()
	dc.Translate(snap.Viewport.Pan.X, snap.Viewport.Pan.Y)
	dc.Scale(snap.Viewport.Zoom, snap.Viewport.Zoom)

	visible := visibleLayers(snap)
	if visible.Has(models.LayerWalls) {
		for _, w := range snap.Walls {
			drawWallPNG(dc, w, snap.Selection.Is(models.KindWall, w.ID))
		}
	}
	if visible.Has(models.LayerDoors) {
		for _, d := range snap.Doors {
			drawDoorPNG(dc, d, snap.Selection.Is(models.KindDoor, d.ID))
		}
	}
	if visible.Has(models.LayerRooms) {
		for _, room := range snap.Rooms {
			drawRoomPNG(dc, room, snap.Selection.Is(models.KindRoom, room.ID))
		}
	}
	drawPreviewPNG(dc, snap)
	dc.Pop()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawWallPNG(dc *gg.Context, w models.Wall, selected bool) {
	stroke := wallStroke
	if selected {
		stroke = selectedStroke
	}
	dc.SetHexColor(stroke)
	dc.SetLineWidth(w.Thickness)
	dc.DrawLine(w.Start.X, w.Start.Y, w.End.X, w.End.Y)
	dc.Stroke()
}

func drawDoorPNG(dc *gg.Context, d models.Door, selected bool) {
	stroke := doorStroke
	if selected {
		stroke = selectedStroke
	}
	leaf, _ := doorGlyph(d)
	rad := d.Angle * math.Pi / 180

	dc.SetHexColor(stroke)
	dc.SetLineWidth(doorStrokeW)
	dc.MoveTo(d.Position.X, d.Position.Y)
	dc.LineTo(leaf.X, leaf.Y)
	dc.DrawArc(d.Position.X, d.Position.Y, d.Width, rad, rad+math.Pi/2)
	dc.Stroke()
}

func drawRoomPNG(dc *gg.Context, room models.Room, selected bool) {
	fill := parseHexColor(room.DisplayColor())
	stroke := fill
	strokeW := roomStrokeW
	if selected {
		stroke = parseHexColor(selectedStroke)
		strokeW = roomStrokeW + 1
	}

	fillAlpha := roomFillAlpha * 255
	dc.DrawRectangle(room.X, room.Y, room.Width, room.Height)
	dc.SetColor(color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: uint8(fillAlpha)})
	dc.FillPreserve()
	dc.SetColor(stroke)
	dc.SetLineWidth(strokeW)
	dc.Stroke()

	center := room.Center()
	dc.SetColor(fill)
	dc.DrawStringAnchored(room.Name, center.X, center.Y, 0.5, 0.5)
}

// drawPreviewPNG рисует пунктиром будущую стену или комнату, как Render.
func drawPreviewPNG(dc *gg.Context, snap *models.Snapshot) {
	if !snap.Gesture.Drawing || snap.Gesture.Start == nil {
		return
	}
	start := *snap.Gesture.Start

	switch snap.Tool {
	case models.ToolWall:
		end := geometry.SnapAngle(start, snap.Mouse)
		dc.DrawLine(start.X, start.Y, end.X, end.Y)
		dc.SetLineWidth(3)
	case models.ToolRoom:
		rect := geometry.BoundingRect(start, snap.Mouse)
		dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		dc.SetLineWidth(2)
	default:
		return
	}
	dc.SetHexColor(previewStroke)
	dc.SetDash(6, 4)
	dc.Stroke()
	dc.SetDash()
}

// parseHexColor разбирает "#rrggbb"; при ошибке возвращает серый.
func parseHexColor(hex string) color.NRGBA {
	gray := color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
	if len(hex) != 7 || hex[0] != '#' {
		return gray
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return gray
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
