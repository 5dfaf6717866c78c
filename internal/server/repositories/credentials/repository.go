// Package credentials declares the repository contract for stored password
// hashes. At most one credential exists per user, enforced by a uniqueness
// constraint on user_id.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations on credential records.
type Repository interface {
	// Create inserts a credential for userID holding the derived password
	// hash. A second credential for the same user yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, userID string, passwordHash string) (*models.Credential, error)

	// GetByUserID returns the credential for userID, or common.ErrorNotFound
	// when absent. Absence is not an error condition for callers deciding
	// between "no such user" and "wrong password".
	GetByUserID(ctx context.Context, userID string) (*models.Credential, error)

	// UpdateHash replaces the stored hash for userID, e.g. after a password
	// reset. Returns common.ErrorNotFound if the user has no credential.
	UpdateHash(ctx context.Context, userID string, passwordHash string) error
}
