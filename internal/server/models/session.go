package models

import "time"

// Session is a refresh-token record. The raw refresh secret is returned to
// the caller exactly once at issuance; only its SHA-256 digest (TokenHash)
// is ever stored. Rotation swaps TokenHash atomically, so at most one live
// secret maps to a session id at any time.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live reports whether the session is usable at the given instant.
// A session exactly at its expiry boundary counts as expired.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
