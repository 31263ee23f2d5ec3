package storage

import (
	"sync"
	"time"

	"github.com/CasaWayra/wayra-backend/internal/models"
)

// MemoryStore keeps all sessions in memory. Sessions live for the
// process lifetime; there is no TTL and no capacity bound, which is an
// accepted tradeoff for a single low-traffic deployment.
//
// Every session that crosses the store boundary is a deep copy. The
// conversation layer mutates Fields under a per-phone lock while the
// admin endpoint reads sessions concurrently; sharing the underlying
// map between them would race.
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

func (m *MemoryStore) GetSession(phone string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[phone]
	if !exists {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (m *MemoryStore) CreateSession(phone string, mode models.SessionMode) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &models.Session{
		Phone:       phone,
		Mode:        mode,
		SlotIndex:   0,
		Fields:      make(map[string]string),
		LastUpdated: time.Now(),
	}

	// Map assignment replaces any session the phone already had
	m.sessions[phone] = session
	return cloneSession(session), nil
}

func (m *MemoryStore) SaveSession(session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.LastUpdated = time.Now()
	m.sessions[session.Phone] = cloneSession(session)
	return nil
}

func (m *MemoryStore) DeleteSession(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, phone)
	return nil
}

func (m *MemoryStore) GetActiveSessions() ([]*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, cloneSession(session))
	}
	return sessions, nil
}

func cloneSession(session *models.Session) *models.Session {
	copied := *session
	copied.Fields = make(map[string]string, len(session.Fields))
	for k, v := range session.Fields {
		copied.Fields[k] = v
	}
	return &copied
}
