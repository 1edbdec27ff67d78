package domain

import "time"

// Otp is a single-use password-reset code tied to an email address.
// At most one live (unverified, unexpired) row exists per email: requesting
// a new code deletes every prior row for that address first.
type Otp struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"code" db:"code"` // 6 digits, zero-padded
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
