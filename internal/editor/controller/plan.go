package controller

import (
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Initial plans
// ============================================================

// Plan описывает набор сущностей, которым заполняется новый редактор.
type Plan struct {
	Rooms []models.Room
	Walls []models.Wall
	Doors []models.Door
}

// DemoPlan возвращает квартиру из четырёх комнат: внешний контур, перегородки и две двери.
func DemoPlan() Plan {
	return Plan{
		Rooms: []models.Room{
			{X: 50, Y: 50, Width: 120, Height: 80, Type: models.RoomLiving, Name: "Living room", Area: 25.6},
			{X: 200, Y: 50, Width: 100, Height: 80, Type: models.RoomKitchen, Name: "Kitchen", Area: 12.5},
			{X: 50, Y: 150, Width: 80, Height: 100, Type: models.RoomBedroom, Name: "Bedroom", Area: 18.2},
			{X: 200, Y: 150, Width: 80, Height: 60, Type: models.RoomBathroom, Name: "Bathroom", Area: 6.8},
		},
		Walls: []models.Wall{
			wall(40, 40, 360, 40),
			wall(360, 40, 360, 260),
			wall(360, 260, 40, 260),
			wall(40, 260, 40, 40),
			wall(170, 40, 170, 130),
			wall(170, 150, 170, 260),
			wall(40, 130, 130, 130),
			wall(150, 130, 360, 130),
		},
		Doors: []models.Door{
			{Position: models.Point{X: 130, Y: 130}, Width: DefaultDoorWidth, Angle: 0},
			{Position: models.Point{X: 170, Y: 130}, Width: DefaultDoorWidth, Angle: 90},
		},
	}
}

func wall(x1, y1, x2, y2 float64) models.Wall {
	return models.Wall{
		Start:     models.Point{X: x1, Y: y1},
		End:       models.Point{X: x2, Y: y2},
		Thickness: DefaultWallThickness,
	}
}

// load копирует план в редактор, выдавая id сущностям без него.
func (e *Editor) load(plan Plan) {
	for _, r := range plan.Rooms {
		if r.ID == "" {
			r.ID = e.newID()
		}
		e.rooms = append(e.rooms, r)
	}
	for _, w := range plan.Walls {
		if w.ID == "" {
			w.ID = e.newID()
		}
		e.walls = append(e.walls, w)
	}
	for _, d := range plan.Doors {
		if d.ID == "" {
			d.ID = e.newID()
		}
		e.doors = append(e.doors, d)
	}
}
