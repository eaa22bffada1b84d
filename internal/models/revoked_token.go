package models

import "time"

// RevokedToken records a logged-out session token until its natural expiry (PostgreSQL).
type RevokedToken struct {
	JTI       string    `json:"jti" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"size:24;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
