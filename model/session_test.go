package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionModel_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t, "session", &Session{})

	session := Session{
		UserID:       "RE0001",
		SessionToken: "token-abc",
		ExpiresAt:    time.Now().Add(time.Hour),
		ClientIP:     "127.0.0.1",
		Browser:      "test-agent",
	}
	assert.NoError(t, db.Create(&session).Error)

	var found Session
	err := db.Where("session_token = ?", "token-abc").First(&found).Error
	assert.NoError(t, err)
	assert.Equal(t, "RE0001", found.UserID)
}

func TestSessionModel_TokenUnique(t *testing.T) {
	db := setupTestDB(t, "session", &Session{})

	first := Session{UserID: "RE0001", SessionToken: "dup", ExpiresAt: time.Now().Add(time.Hour)}
	assert.NoError(t, db.Create(&first).Error)

	second := Session{UserID: "RE0002", SessionToken: "dup", ExpiresAt: time.Now().Add(time.Hour)}
	assert.Error(t, db.Create(&second).Error)
}

func TestSessionModel_DeleteOnLogout(t *testing.T) {
	db := setupTestDB(t, "session", &Session{})

	session := Session{UserID: "RE0001", SessionToken: "gone", ExpiresAt: time.Now().Add(time.Hour)}
	db.Create(&session)

	assert.NoError(t, db.Where("session_token = ?", "gone").Delete(&Session{}).Error)

	var found Session
	err := db.Where("session_token = ?", "gone").First(&found).Error
	assert.Error(t, err)
}
