package storage

import (
	"github.com/CasaWayra/wayra-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for session storage operations.
// GetSession returns (nil, nil) when the phone has no active session.
// CreateSession overwrites any existing session for the phone.
type Store interface {
	GetSession(phone string) (*models.Session, error)
	CreateSession(phone string, mode models.SessionMode) (*models.Session, error)
	SaveSession(session *models.Session) error
	DeleteSession(phone string) error

	// GetActiveSessions returns all live sessions (for monitoring)
	GetActiveSessions() ([]*models.Session, error)
}
