// Package sessions declares the repository contract for refresh-token
// sessions. Rows carry only the SHA-256 digest of the refresh secret;
// rotation and revocation are single conditional statements so that two
// concurrent attempts on the same secret cannot both succeed.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, rotating, and
// revoking refresh sessions.
type Repository interface {
	// Create inserts a new session row. The caller supplies the token hash;
	// the raw secret never reaches this layer.
	Create(ctx context.Context, session *models.Session) error

	// FindByTokenHash returns the non-revoked session whose token hash
	// matches, or common.ErrorNotFound. Absent, rotated, and revoked
	// secrets are indistinguishable here.
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)

	// Rotate atomically replaces oldHash with newHash and extends the
	// expiry, but only if the row still carries oldHash and is not revoked.
	// A lost race yields common.ErrVersionConflict.
	Rotate(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error

	// Revoke terminally revokes the session. Revoking twice is not an error.
	Revoke(ctx context.Context, id string) error

	// RevokeAllForUser revokes every live session owned by userID.
	RevokeAllForUser(ctx context.Context, userID string) error
}
