// Package users declares the server-side repository contract for identity
// records in persistent storage.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations on user identity records.
type Repository interface {
	// Create inserts a new user with the given email. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, email string) (*models.User, error)

	// GetByEmail returns the user with the given email, or
	// common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound
	// when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// MarkEmailVerified flips the email-verified flag. Verifying an already
	// verified user is not an error.
	MarkEmailVerified(ctx context.Context, id string) error
}
