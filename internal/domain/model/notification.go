package model

import "time"

// PasswordResetNotification is queued when a reset is requested for an
// existing account and delivered out of band.
type PasswordResetNotification struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	RequestedAt time.Time `json:"requested_at"`
}
