package model

import "time"

// PasswordResetToken is one issued password-reset token. A token is valid
// while ExpiresAt is strictly in the future; issuing a new token for the
// same email, or redeeming this one, moves ExpiresAt to now. Expired rows
// are kept as history, never deleted.
type PasswordResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index;size:255;not null"`
	Token     string    `json:"token" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
