// Package services contains server-side business logic: the credential,
// session, OTP, and email-verification engines plus the AuthService that
// composes them into registration, login, refresh, and revocation use cases.
package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashSecret returns the SHA-256 hex digest of a refresh secret or OTP code.
// Only digests are persisted; lookups hash the presented value and compare
// by equality in the database, so no raw secret ever reaches storage.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
