package render

import (
	"fmt"
	"math"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Status strip
// ============================================================

// Status собирает строку состояния: курсор, масштаб, инструмент, выбор.
func Status(snap *models.Snapshot) models.Status {
	return models.Status{
		X:           int(math.Round(snap.Mouse.X)),
		Y:           int(math.Round(snap.Mouse.Y)),
		ZoomPercent: int(math.Round(snap.Viewport.Zoom * 100)),
		Tool:        snap.Tool,
		Selected:    selectionName(snap),
		Ready:       snap.Mode == models.ModeIdle,
	}
}

// StatusLine форматирует строку состояния.
func StatusLine(st models.Status) string {
	return fmt.Sprintf("X: %d, Y: %d | Zoom: %d%% | Tool: %s | Selected: %s",
		st.X, st.Y, st.ZoomPercent, st.Tool, st.Selected)
}

func selectionName(snap *models.Snapshot) string {
	switch snap.Selection.Kind {
	case models.KindRoom:
		if room, ok := snap.FindRoom(snap.Selection.ID); ok {
			return room.Name
		}
	case models.KindWall:
		return "Wall"
	case models.KindDoor:
		return "Door"
	}
	return "None"
}

// ============================================================
// Properties panel
// ============================================================

// Properties возвращает метрики выбранной комнаты для панели свойств.
func Properties(snap *models.Snapshot) (models.Properties, bool) {
	if snap.Selection.Kind != models.KindRoom {
		return models.Properties{}, false
	}
	room, ok := snap.FindRoom(snap.Selection.ID)
	if !ok {
		return models.Properties{}, false
	}
	return models.Properties{
		ID:      room.ID,
		Name:    room.Name,
		Type:    room.Type,
		Area:    room.Area,
		WidthM:  geometry.Meters(room.Width),
		LengthM: geometry.Meters(room.Height),
		Color:   room.DisplayColor(),
	}, true
}
