package models

import "time"

// OTPCode is a single-use, time-boxed code. Only the SHA-256 digest of the
// code is stored; consumption flips Consumed in the same statement that
// checks expiry and match.
type OTPCode struct {
	ID        string
	UserID    string
	Purpose   string
	CodeHash  string
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}
