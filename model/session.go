package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-tracked login session. The token it stores is the
// only accepted authentication signal; the display cookies carry no
// authority on their own.
type Session struct {
	gorm.Model
	UserID       string    `gorm:"column:user_id;index;not null" json:"user_id"`
	SessionToken string    `gorm:"column:session_token;uniqueIndex;not null" json:"session_token"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	ClientIP     string    `gorm:"column:client_ip" json:"client_ip"`
	Browser      string    `gorm:"column:browser" json:"browser"`
}
