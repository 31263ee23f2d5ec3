package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CasaWayra/wayra-backend/internal/models"
)

func TestSessionRowRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	session := &models.Session{
		Phone:      "593999999999",
		Mode:       models.ModeReservingSpecial,
		SlotIndex:  3,
		Confirming: true,
		Fields: map[string]string{
			"ocasion":  "cumpleaños",
			"fecha":    "15/10",
			"hora":     "20:00",
			"personas": "8",
		},
		LastUpdated: now,
	}

	row, err := sessionToRow(session)
	require.NoError(t, err)
	assert.Equal(t, session.Phone, row.PhoneNumber)
	assert.Equal(t, string(session.Mode), row.Mode)
	assert.Equal(t, session.SlotIndex, row.SlotIndex)
	assert.True(t, row.Confirming)
	assert.NotEmpty(t, row.FieldsJSON)

	restored, err := rowToSession(row)
	require.NoError(t, err)
	assert.Equal(t, session, restored)
}

func TestRowToSessionWithEmptyFields(t *testing.T) {
	row := &models.WhatsAppSession{
		PhoneNumber: "593999999999",
		Mode:        string(models.ModeReserving),
	}

	session, err := rowToSession(row)
	require.NoError(t, err)
	require.NotNil(t, session.Fields)
	assert.Empty(t, session.Fields)
	assert.Equal(t, models.ModeReserving, session.Mode)
	assert.False(t, session.Confirming)
}

func TestRowToSessionRejectsMalformedJSON(t *testing.T) {
	row := &models.WhatsAppSession{
		PhoneNumber: "593999999999",
		Mode:        string(models.ModeOrderingBeer),
		FieldsJSON:  "{not-json",
	}

	session, err := rowToSession(row)
	assert.Error(t, err)
	assert.Nil(t, session)
}

func TestSessionToRowWithNoFields(t *testing.T) {
	session := &models.Session{
		Phone:  "593999999999",
		Mode:   models.ModeOrderingBeer,
		Fields: map[string]string{},
	}

	row, err := sessionToRow(session)
	require.NoError(t, err)
	assert.Equal(t, "{}", row.FieldsJSON)

	restored, err := rowToSession(row)
	require.NoError(t, err)
	assert.Empty(t, restored.Fields)
}
