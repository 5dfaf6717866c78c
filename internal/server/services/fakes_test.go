package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/mail"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/otpcodes"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// memRepoManager is an in-memory RepositoryManager used by the service
// tests. It ignores the db handle it is given, so it works equally for
// direct calls and calls routed through a transaction.
type memRepoManager struct {
	mu sync.Mutex

	usersByID    map[string]*models.User
	usersByEmail map[string]*models.User
	creds        map[string]*models.Credential
	sessionsByID map[string]*models.Session
	otps         []*models.OTPCode

	failCredentialCreate bool
	failSessionCreate    bool
	failSessionRevoke    bool

	// blockUserGet makes user lookups hang until the caller's context is
	// cancelled, simulating an unresponsive backend.
	blockUserGet bool
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		creds:        make(map[string]*models.Credential),
		sessionsByID: make(map[string]*models.Session),
	}
}

func (m *memRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *memRepoManager) Users(db dbx.DBTX) users.Repository {
	return &memUserRepo{m: m}
}

func (m *memRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return &memCredentialRepo{m: m}
}

func (m *memRepoManager) Sessions(db dbx.DBTX) sessions.Repository {
	return &memSessionRepo{m: m}
}

func (m *memRepoManager) OTPCodes(db dbx.DBTX) otpcodes.Repository {
	return &memOTPRepo{m: m}
}

type memUserRepo struct{ m *memRepoManager }

func (r *memUserRepo) Create(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.usersByEmail[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := &models.User{ID: "user-" + email, Email: email, CreatedAt: time.Now()}
	r.m.usersByID[u.ID] = u
	r.m.usersByEmail[email] = u
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.m.blockUserGet {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.usersByEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.usersByID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.usersByID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.EmailVerified = true
	return nil
}

type memCredentialRepo struct{ m *memRepoManager }

func (r *memCredentialRepo) Create(ctx context.Context, userID, passwordHash string) (*models.Credential, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failCredentialCreate {
		return nil, errors.New("db error: connection reset")
	}
	if _, ok := r.m.creds[userID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	c := &models.Credential{ID: "cred-" + userID, UserID: userID, PasswordHash: passwordHash, UpdatedAt: time.Now()}
	r.m.creds[userID] = c
	return c, nil
}

func (r *memCredentialRepo) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.creds[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memCredentialRepo) UpdateHash(ctx context.Context, userID, passwordHash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.creds[userID]
	if !ok {
		return common.ErrorNotFound
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = time.Now()
	return nil
}

type memSessionRepo struct{ m *memRepoManager }

func (r *memSessionRepo) Create(ctx context.Context, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failSessionCreate {
		return errors.New("db error: connection reset")
	}
	copied := *session
	r.m.sessionsByID[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sessionsByID {
		if s.TokenHash == tokenHash && !s.Revoked {
			copied := *s
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memSessionRepo) Rotate(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessionsByID[id]
	if !ok || s.TokenHash != oldHash || s.Revoked {
		return common.ErrVersionConflict
	}
	s.TokenHash = newHash
	s.ExpiresAt = expiresAt
	s.UpdatedAt = time.Now()
	return nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failSessionRevoke {
		return errors.New("db error: connection reset")
	}
	if s, ok := r.m.sessionsByID[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (r *memSessionRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sessionsByID {
		if s.UserID == userID {
			s.Revoked = true
		}
	}
	return nil
}

type memOTPRepo struct{ m *memRepoManager }

func (r *memOTPRepo) Create(ctx context.Context, code *models.OTPCode) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	copied := *code
	r.m.otps = append(r.m.otps, &copied)
	return nil
}

func (r *memOTPRepo) Consume(ctx context.Context, userID, purpose, codeHash string, now time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.otps {
		if c.UserID == userID && c.Purpose == purpose && c.CodeHash == codeHash && !c.Consumed && now.Before(c.ExpiresAt) {
			c.Consumed = true
			return true, nil
		}
	}
	return false, nil
}

// captureMailer records sent messages instead of delivering them.
type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     bool
}

func (m *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return mail.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
