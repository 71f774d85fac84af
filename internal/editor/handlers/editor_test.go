package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"floorplan-editor/internal/editor/controller"
	"floorplan-editor/internal/editor/journal"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/render"
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t        *testing.T
	app      *fiber.App
	sessions *session.Manager
}

func newTestServer(t *testing.T, withJournal bool) *testServer {
	t.Helper()

	var j *journal.Journal
	if withJournal {
		var err error
		j, err = journal.Open(context.Background(), journal.MemoryDSN)
		require.NoError(t, err)
		t.Cleanup(func() { j.Close() })
	}

	sessions := session.NewManager(func() *controller.Editor {
		return controller.New(controller.WithPlan(controller.DemoPlan()))
	})
	app := fiber.New()
	Register(app, NewEditorHandler(sessions, j, render.NewRenderer(800, 600)), sessions)

	return &testServer{t: t, app: app, sessions: sessions}
}

func (s *testServer) do(method, path, body string) (*http.Response, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, data
}

func (s *testServer) state(method, path, body string) stateResponse {
	s.t.Helper()

	resp, data := s.do(method, path, body)
	require.Equal(s.t, http.StatusOK, resp.StatusCode, string(data))

	var out stateResponse
	require.NoError(s.t, json.Unmarshal(data, &out))
	return out
}

func (s *testServer) create() stateResponse {
	s.t.Helper()

	resp, data := s.do(http.MethodPost, "/api/v1/sessions", "")
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, string(data))

	var out stateResponse
	require.NoError(s.t, json.Unmarshal(data, &out))
	require.NotEmpty(s.t, out.Session)
	return out
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + id + suffix
}

// ============================================================
// Sessions
// ============================================================

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, true)

	created := srv.create()

	assert.Equal(t, models.ToolSelect, created.State.Tool)
	assert.Len(t, created.State.Rooms, 4)
	assert.Equal(t, "X: 0, Y: 0 | Zoom: 100% | Tool: select | Selected: None", created.StatusLine)
	assert.Nil(t, created.Properties)
	assert.Equal(t, 1, srv.sessions.Len())

	got := srv.state(http.MethodGet, sessionPath(created.Session, ""), "")
	assert.Equal(t, created.State.Rooms, got.State.Rooms)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, true)
	id := srv.create().Session

	resp, _ := srv.do(http.MethodDelete, sessionPath(id, ""), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = srv.do(http.MethodGet, sessionPath(id, ""), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(http.MethodDelete, sessionPath(id, ""), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, false)

	resp, data := srv.do(http.MethodPost, sessionPath("nope", "/tool"), `{"tool":"wall"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(data), "session not found")
}

// ============================================================
// Drawing flows
// ============================================================

func TestDrawRoomFlow(t *testing.T) {
	srv := newTestServer(t, true)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"room"}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":50,"y":50,"button":0}`)
	mid := srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":150,"y":130}`)
	assert.Equal(t, models.ModeDrawing, mid.State.Mode)
	assert.True(t, mid.State.Gesture.Drawing)
	assert.False(t, mid.Status.Ready)

	done := srv.state(http.MethodPost, sessionPath(id, "/pointer/up"), `{"x":150,"y":130,"button":0}`)

	require.Len(t, done.State.Rooms, 5)
	r := done.State.Rooms[4]
	assert.Equal(t, 100.0, r.Width)
	assert.Equal(t, 80.0, r.Height)
	assert.Equal(t, 80.0, r.Area)
	assert.Equal(t, "Room 5", r.Name)
	assert.Equal(t, models.ModeIdle, done.State.Mode)

	resp, svg := srv.do(http.MethodGet, sessionPath(id, "/scene.svg"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(svg), `data-id="`+r.ID+`"`)
}

func TestDoorAndWallFlow(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"door"}`)
	doors := srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":75,"y":30}`)
	require.Len(t, doors.State.Doors, 3)
	assert.Equal(t, 20.0, doors.State.Doors[2].Width)

	srv.state(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"wall"}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":40,"y":40}`)
	walls := srv.state(http.MethodPost, sessionPath(id, "/pointer/up"), `{"x":120,"y":45}`)
	require.Len(t, walls.State.Walls, 9)
	assert.InDelta(t, 40.0, walls.State.Walls[8].End.Y, 1e-9)
}

func TestPanAndZoom(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":10,"y":10,"button":1}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":30,"y":40,"dx":20,"dy":30}`)
	panned := srv.state(http.MethodPost, sessionPath(id, "/pointer/up"), `{"x":30,"y":40,"button":1}`)
	assert.Equal(t, models.Point{X: 20, Y: 30}, panned.State.Viewport.Pan)

	zoomed := srv.state(http.MethodPost, sessionPath(id, "/wheel"), `{"deltaY":100}`)
	assert.InDelta(t, 0.9, zoomed.State.Viewport.Zoom, 1e-9)

	zoomed = srv.state(http.MethodPost, sessionPath(id, "/zoom"), `{"zoom":9}`)
	assert.Equal(t, 5.0, zoomed.State.Viewport.Zoom)
	assert.Equal(t, 500, zoomed.Status.ZoomPercent)

	reset := srv.state(http.MethodPost, sessionPath(id, "/view/reset"), "")
	assert.Equal(t, models.DefaultViewport(), reset.State.Viewport)
}

// ============================================================
// Selection & editing
// ============================================================

func TestSelectEditAndDeleteRoom(t *testing.T) {
	srv := newTestServer(t, true)
	created := srv.create()
	id := created.Session
	kitchen := created.State.Rooms[1]

	sel := srv.state(http.MethodPost, sessionPath(id, "/select"), fmt.Sprintf(`{"kind":"room","id":%q}`, kitchen.ID))
	require.NotNil(t, sel.Properties)
	assert.Equal(t, "Kitchen", sel.Properties.Name)
	assert.Equal(t, 10.0, sel.Properties.WidthM)
	assert.Equal(t, "Kitchen", sel.Status.Selected)

	resp, data := srv.do(http.MethodGet, sessionPath(id, "/room/edit"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var form models.EditForm
	require.NoError(t, json.Unmarshal(data, &form))
	assert.Equal(t, models.EditForm{Name: "Kitchen", Color: "#059669"}, form)

	edited := srv.state(http.MethodPost, sessionPath(id, "/room/edit"), `{"name":"Office","color":"#FF0000"}`)
	assert.Equal(t, models.RoomCustom, edited.State.Rooms[1].Type)
	assert.Equal(t, "Office", edited.State.Rooms[1].Name)
	assert.Equal(t, "#FF0000", edited.Properties.Color)

	resp, _ = srv.do(http.MethodPost, sessionPath(id, "/room/edit"), `{"name":"Office","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	deleted := srv.state(http.MethodDelete, sessionPath(id, "/selection"), "")
	assert.Len(t, deleted.State.Rooms, 3)
	assert.True(t, deleted.State.Selection.IsNone())

	resp, _ = srv.do(http.MethodGet, sessionPath(id, "/properties"), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSelectErrors(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	resp, _ := srv.do(http.MethodPost, sessionPath(id, "/select"), `{"kind":"room","id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(http.MethodPost, sessionPath(id, "/select"), `{"kind":"window","id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(http.MethodPost, sessionPath(id, "/select"), `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"eraser"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleLayerHidesFromScene(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	toggled := srv.state(http.MethodPost, sessionPath(id, "/layers/walls/toggle"), "")
	assert.False(t, toggled.State.LayerVisible(models.LayerWalls))

	_, svg := srv.do(http.MethodGet, sessionPath(id, "/scene.svg"), "")
	assert.NotContains(t, string(svg), `data-kind="wall"`)
	assert.Contains(t, string(svg), `data-kind="room"`)

	resp, _ := srv.do(http.MethodPost, sessionPath(id, "/layers/furniture/toggle"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================
// Output & journal
// ============================================================

func TestScenePNG(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	resp, data := srv.do(http.MethodGet, sessionPath(id, "/scene.png"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session
	srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":12,"y":34}`)

	resp, data := srv.do(http.MethodGet, sessionPath(id, "/status"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "X: 12, Y: 34 | Zoom: 100% | Tool: select | Selected: None")
}

func TestHistoryRecordsOperations(t *testing.T) {
	srv := newTestServer(t, true)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"door"}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":1,"y":1}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":5,"y":5}`)

	resp, data := srv.do(http.MethodGet, sessionPath(id, "/history"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Entries []journal.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	ops := make([]string, 0, len(out.Entries))
	for _, e := range out.Entries {
		ops = append(ops, e.Op)
	}
	assert.Equal(t, []string{"session.create", "tool.set", "pointer.down"}, ops)
	assert.True(t, strings.HasPrefix(out.Entries[2].Detail, "door "))
}

func TestHistoryWithoutJournal(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	resp, data := srv.do(http.MethodGet, sessionPath(id, "/history"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"entries":[]}`, string(data))
}

func TestSaveAndShareAreInert(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.create()

	for _, action := range []string{"/save", "/share"} {
		resp, data := srv.do(http.MethodPost, sessionPath(created.Session, action), "")
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.JSONEq(t, `{"status":"noop"}`, string(data))
	}

	after := srv.state(http.MethodGet, sessionPath(created.Session, ""), "")
	assert.Equal(t, created.State, after.State)
}

// ============================================================
// Page & probes
// ============================================================

func TestEditorPageAndProbes(t *testing.T) {
	srv := newTestServer(t, false)
	srv.create()

	resp, page := srv.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "ROOM EDITOR")

	resp, data := srv.do(http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, string(data))

	_, data = srv.do(http.MethodGet, "/health/ready", "")
	assert.JSONEq(t, `{"status":"ready","sessions":1}`, string(data))
}

func TestEditorPageSendsPointerEventsInOrder(t *testing.T) {
	srv := newTestServer(t, false)

	_, page := srv.do(http.MethodGet, "/", "")
	html := string(page)

	// один общий порядок для всех вызовов API
	assert.Contains(t, html, "const next = queue.then(() => request(method, path, body));")
	// смещения не теряются, пока move в пути
	assert.Contains(t, html, "pendingDelta.dx += e.movementX;")
	assert.Contains(t, html, "pendingDelta.dy += e.movementY;")
	assert.NotContains(t, html, "if (pending) return;")
}

func TestPanSumsAccumulatedDelta(t *testing.T) {
	srv := newTestServer(t, false)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":0,"y":0,"button":1}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":5,"y":0,"dx":5,"dy":0}`)
	// два следующих движения пришли одним запросом
	srv.state(http.MethodPost, sessionPath(id, "/pointer/move"), `{"x":15,"y":3,"dx":10,"dy":3}`)
	done := srv.state(http.MethodPost, sessionPath(id, "/pointer/up"), `{"x":15,"y":3,"button":1}`)

	assert.Equal(t, models.Point{X: 15, Y: 3}, done.State.Viewport.Pan)
	assert.Equal(t, models.ModeIdle, done.State.Mode)
}

func TestPointerUpJournalsCreatedRoom(t *testing.T) {
	srv := newTestServer(t, true)
	id := srv.create().Session

	srv.state(http.MethodPost, sessionPath(id, "/tool"), `{"tool":"room"}`)
	srv.state(http.MethodPost, sessionPath(id, "/pointer/down"), `{"x":10,"y":10}`)
	done := srv.state(http.MethodPost, sessionPath(id, "/pointer/up"), `{"x":60,"y":40}`)
	room := done.State.Rooms[len(done.State.Rooms)-1]

	_, data := srv.do(http.MethodGet, sessionPath(id, "/history"), "")
	var out struct {
		Entries []journal.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	last := out.Entries[len(out.Entries)-1]
	assert.Equal(t, "pointer.up", last.Op)
	assert.Equal(t, "room "+room.ID, last.Detail)
	for _, e := range out.Entries {
		assert.NotEqual(t, "pointer.down", e.Op)
	}
}
