package services

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// UserService is the identity collaborator: it owns user records and the
// email-verified flag. The auth core references users but never mutates
// anything else about them.
type UserService struct {
	repomanager repomanager.RepositoryManager
}

// NewUserService constructs a UserService over the given repositories.
func NewUserService(m repomanager.RepositoryManager) *UserService {
	return &UserService{repomanager: m}
}

// Create inserts a new user. Duplicate emails surface as
// common.ErrorAlreadyExists from the repository.
func (s *UserService) Create(ctx context.Context, db dbx.DBTX, email string) (*models.User, error) {
	return s.repomanager.Users(db).Create(ctx, email)
}

// GetByEmail returns the user with the given email, or common.ErrorNotFound.
func (s *UserService) GetByEmail(ctx context.Context, db dbx.DBTX, email string) (*models.User, error) {
	return s.repomanager.Users(db).GetByEmail(ctx, email)
}

// GetByID returns the user with the given id, or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, db dbx.DBTX, id string) (*models.User, error) {
	return s.repomanager.Users(db).GetByID(ctx, id)
}

// MarkEmailVerified flips the verified flag; idempotent.
func (s *UserService) MarkEmailVerified(ctx context.Context, db dbx.DBTX, id string) error {
	return s.repomanager.Users(db).MarkEmailVerified(ctx, id)
}
