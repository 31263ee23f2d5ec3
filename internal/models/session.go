package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionMode identifies which conversational flow a session is driving.
// A session only exists while a flow is active; an idle user has no session.
type SessionMode string

const (
	ModeReserving        SessionMode = "reserving"
	ModeReservingSpecial SessionMode = "reserving_special"
	ModeOrderingBeer     SessionMode = "ordering_beer"
)

// Session is the per-phone conversation state for an active flow.
type Session struct {
	Phone       string            `json:"phone"`
	Mode        SessionMode       `json:"mode"`
	SlotIndex   int               `json:"slot_index"`
	Confirming  bool              `json:"confirming"`
	Fields      map[string]string `json:"fields"`
	LastUpdated time.Time         `json:"last_updated"`
}

// WhatsAppSession is the database row backing a Session when the
// Postgres store is in use. Slot values are kept as a JSON string.
type WhatsAppSession struct {
	gorm.Model
	PhoneNumber string    `json:"phone_number" gorm:"uniqueIndex"`
	Mode        string    `json:"mode"`
	SlotIndex   int       `json:"slot_index"`
	Confirming  bool      `json:"confirming"`
	FieldsJSON  string    `json:"fields_json"`
	LastUpdated time.Time `json:"last_updated"`
}
