package session

import (
	"sync"
	"time"

	"floorplan-editor/internal/editor/controller"

	"github.com/google/uuid"
)

// ============================================================
// Session
// ============================================================

// Session: редактор одной вкладки браузера. Все операции над редактором
// выполняются через Do, по одной за раз.
type Session struct {
	ID string

	mu       sync.Mutex
	editor   *controller.Editor
	lastSeen time.Time
	now      func() time.Time
}

// Do выполняет fn под блокировкой сессии.
func (s *Session) Do(fn func(e *controller.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = s.now()
	return fn(s.editor)
}

func (s *Session) idleSince(t time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return t.Sub(s.lastSeen)
}

// ============================================================
// Session Manager
// ============================================================

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  func() *controller.Editor
	now      func() time.Time
}

// NewManager создаёт менеджер; factory строит редактор для новой сессии.
func NewManager(factory func() *controller.Editor) *Manager {
	if factory == nil {
		factory = func() *controller.Editor { return controller.New() }
	}
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

// Create выдаёт новую сессию со свежим редактором.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		ID:       uuid.NewString(),
		editor:   m.factory(),
		lastSeen: m.now(),
		now:      m.now,
	}
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Delete удаляет сессию; false, если её не было.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sweep удаляет сессии, простаивающие дольше maxIdle, и возвращает их id.
func (m *Manager) Sweep(maxIdle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed []string
	for id, s := range m.sessions {
		if s.idleSince(now) > maxIdle {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}
