// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. The auth core references users but never
// mutates anything except the email-verified flag.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
}
