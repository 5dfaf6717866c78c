package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/passwords"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// CredentialService stores and verifies password hashes. The hashing work
// factor lives in the injected Hasher; this service never sees or keeps a
// plaintext beyond the call that hashes it.
type CredentialService struct {
	repomanager repomanager.RepositoryManager
	hasher      *passwords.Hasher
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(m repomanager.RepositoryManager, hasher *passwords.Hasher) *CredentialService {
	return &CredentialService{repomanager: m, hasher: hasher}
}

// Create derives a salted hash of password and stores it for userID.
// A second credential for the same user yields common.ErrorAlreadyExists.
func (s *CredentialService) Create(ctx context.Context, db dbx.DBTX, userID, password string) (*models.Credential, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	cred, err := s.repomanager.Credentials(db).Create(ctx, userID, hash)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating credential: %w", err)
	}
	return cred, nil
}

// GetByUserID returns the credential for userID, or common.ErrorNotFound
// when absent.
func (s *CredentialService) GetByUserID(ctx context.Context, db dbx.DBTX, userID string) (*models.Credential, error) {
	return s.repomanager.Credentials(db).GetByUserID(ctx, userID)
}

// Verify reports whether password matches storedHash.
func (s *CredentialService) Verify(password, storedHash string) (bool, error) {
	return s.hasher.Verify(password, storedHash)
}

// UpdatePassword re-hashes and replaces the stored credential, e.g. after a
// password reset.
func (s *CredentialService) UpdatePassword(ctx context.Context, db dbx.DBTX, userID, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repomanager.Credentials(db).UpdateHash(ctx, userID, hash)
}
