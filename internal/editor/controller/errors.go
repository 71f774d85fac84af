package controller

import "errors"

var (
	ErrUnknownTool    = errors.New("unknown tool")
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrUnknownKind    = errors.New("unknown entity kind")
	ErrEntityNotFound = errors.New("entity not found")
	ErrNoRoomSelected = errors.New("no room selected")
	ErrInvalidColor   = errors.New("invalid color, expected #rrggbb")
	ErrInvalidZoom    = errors.New("invalid zoom value")
)
