package models

import "time"

// Credential stores a user's password hash. One-to-one with User,
// enforced by a uniqueness constraint on UserID.
type Credential struct {
	ID           string
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}
