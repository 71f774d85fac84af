package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"floorplan-editor/internal/editor/controller"
	"floorplan-editor/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(nil)
	m.now = clock.now
	return m, clock
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager()

	s := m.Create()
	require.NotEmpty(t, s.ID)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager()
	a, b := m.Create(), m.Create()
	require.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Do(func(e *controller.Editor) error { return e.SetTool("wall") }))

	var tool string
	require.NoError(t, b.Do(func(e *controller.Editor) error {
		tool = string(e.Tool())
		return nil
	}))
	assert.Equal(t, "select", tool)
}

func TestDoReturnsError(t *testing.T) {
	m, _ := newTestManager()
	s := m.Create()
	boom := errors.New("boom")

	err := s.Do(func(*controller.Editor) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestFactoryIsUsed(t *testing.T) {
	m := NewManager(func() *controller.Editor {
		return controller.New(controller.WithPlan(controller.DemoPlan()))
	})
	s := m.Create()

	var rooms int
	require.NoError(t, s.Do(func(e *controller.Editor) error {
		rooms = len(e.State().Rooms)
		return nil
	}))
	assert.Equal(t, 4, rooms)
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager()
	s := m.Create()

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	assert.Equal(t, 0, m.Len())
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	m, clock := newTestManager()
	stale := m.Create()
	clock.advance(30 * time.Minute)
	fresh := m.Create()
	clock.advance(20 * time.Minute)

	require.NoError(t, fresh.Do(func(*controller.Editor) error { return nil }))
	clock.advance(15 * time.Minute)

	removed := m.Sweep(time.Hour)

	assert.Equal(t, []string{stale.ID}, removed)
	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestConcurrentDo(t *testing.T) {
	m, _ := newTestManager()
	s := m.Create()
	require.NoError(t, s.Do(func(e *controller.Editor) error { return e.SetTool("door") }))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(e *controller.Editor) error {
				e.PointerDown(models.PointerEvent{})
				return nil
			})
		}()
	}
	wg.Wait()

	var doors int
	require.NoError(t, s.Do(func(e *controller.Editor) error {
		doors = len(e.State().Doors)
		return nil
	}))
	assert.Equal(t, 50, doors)
}
