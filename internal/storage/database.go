package storage

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/CasaWayra/wayra-backend/internal/models"
)

// DatabaseStore persists sessions in PostgreSQL via GORM. It implements
// the same Store interface as MemoryStore so the conversation core does
// not care which backend is active.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed session store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) GetSession(phone string) (*models.Session, error) {
	var row models.WhatsAppSession
	err := d.db.Where("phone_number = ?", phone).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToSession(&row)
}

func (d *DatabaseStore) CreateSession(phone string, mode models.SessionMode) (*models.Session, error) {
	// Overwrite any session the phone already had
	if err := d.db.Where("phone_number = ?", phone).
		Unscoped().Delete(&models.WhatsAppSession{}).Error; err != nil {
		return nil, err
	}

	session := &models.Session{
		Phone:       phone,
		Mode:        mode,
		SlotIndex:   0,
		Fields:      make(map[string]string),
		LastUpdated: time.Now(),
	}

	row, err := sessionToRow(session)
	if err != nil {
		return nil, err
	}
	if err := d.db.Create(row).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DatabaseStore) SaveSession(session *models.Session) error {
	session.LastUpdated = time.Now()

	fields, err := json.Marshal(session.Fields)
	if err != nil {
		return err
	}

	return d.db.Model(&models.WhatsAppSession{}).
		Where("phone_number = ?", session.Phone).
		Updates(map[string]interface{}{
			"mode":         string(session.Mode),
			"slot_index":   session.SlotIndex,
			"confirming":   session.Confirming,
			"fields_json":  string(fields),
			"last_updated": session.LastUpdated,
		}).Error
}

func (d *DatabaseStore) DeleteSession(phone string) error {
	return d.db.Where("phone_number = ?", phone).
		Unscoped().Delete(&models.WhatsAppSession{}).Error
}

func (d *DatabaseStore) GetActiveSessions() ([]*models.Session, error) {
	var rows []models.WhatsAppSession
	if err := d.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	sessions := make([]*models.Session, 0, len(rows))
	for i := range rows {
		session, err := rowToSession(&rows[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func sessionToRow(session *models.Session) (*models.WhatsAppSession, error) {
	fields, err := json.Marshal(session.Fields)
	if err != nil {
		return nil, err
	}
	return &models.WhatsAppSession{
		PhoneNumber: session.Phone,
		Mode:        string(session.Mode),
		SlotIndex:   session.SlotIndex,
		Confirming:  session.Confirming,
		FieldsJSON:  string(fields),
		LastUpdated: session.LastUpdated,
	}, nil
}

func rowToSession(row *models.WhatsAppSession) (*models.Session, error) {
	fields := make(map[string]string)
	if row.FieldsJSON != "" {
		if err := json.Unmarshal([]byte(row.FieldsJSON), &fields); err != nil {
			return nil, err
		}
	}
	return &models.Session{
		Phone:       row.PhoneNumber,
		Mode:        models.SessionMode(row.Mode),
		SlotIndex:   row.SlotIndex,
		Confirming:  row.Confirming,
		Fields:      fields,
		LastUpdated: row.LastUpdated,
	}, nil
}
