package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// refreshSecretBytes is the entropy of a refresh secret before hex encoding.
const refreshSecretBytes = 32

// IssuedSession bundles a persisted session with the artifacts handed to the
// caller exactly once: the raw refresh secret and a signed access token.
// AccessExpiresAt mirrors the expiry embedded in the access token so the
// boundary layer can report it without decoding the token.
type IssuedSession struct {
	Session         *models.Session
	RefreshToken    string
	AccessToken     string
	AccessExpiresAt time.Time
}

// SessionService implements the refresh-token lifecycle: issue, find by
// presented secret, rotate, revoke. Token lifetimes and the signing secret
// are immutable copies taken at construction.
type SessionService struct {
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	nowTime                      func() time.Time
}

// SessionServiceOption modifies a SessionService during construction.
type SessionServiceOption func(*SessionService)

// WithNowTime sets the clock source (primarily for testing).
func WithNowTime(nowFunc func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.nowTime = nowFunc
	}
}

// NewSessionService constructs a SessionService.
func NewSessionService(m repomanager.RepositoryManager, jwtSecret []byte, accessValidity, refreshValidity time.Duration, options ...SessionServiceOption) *SessionService {
	s := &SessionService{
		repomanager:                  m,
		jwtSecret:                    jwtSecret,
		accessTokenValidityDuration:  accessValidity,
		refreshTokenValidityDuration: refreshValidity,
		nowTime:                      time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Create generates a fresh refresh secret, persists its hash, and returns
// the session together with the raw secret and a signed access token. The
// raw secret is never stored or logged.
func (s *SessionService) Create(ctx context.Context, db dbx.DBTX, userID string) (*IssuedSession, error) {
	secret, err := common.MakeRandHexString(refreshSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh secret: %w", err)
	}

	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	now := s.nowTime()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: hashSecret(secret),
		ExpiresAt: now.Add(s.refreshTokenValidityDuration),
	}
	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error storing session: %w", err)
	}

	return &IssuedSession{
		Session:         session,
		RefreshToken:    secret,
		AccessToken:     accessToken,
		AccessExpiresAt: now.Add(s.accessTokenValidityDuration),
	}, nil
}

// FindByToken hashes the presented secret and looks up the live session.
// Absent, rotated, and revoked secrets all yield common.ErrorNotFound.
func (s *SessionService) FindByToken(ctx context.Context, db dbx.DBTX, refreshToken string) (*models.Session, error) {
	return s.repomanager.Sessions(db).FindByTokenHash(ctx, hashSecret(refreshToken))
}

// Rotate invalidates the session's current secret and issues a new secret,
// access token, and extended expiry. The expiry check happens before any
// write and uses a single clock reading: an expired session is refused with
// common.ErrRefreshTokenExpired rather than silently extended. A concurrent
// rotation that swaps the hash first surfaces as common.ErrVersionConflict.
func (s *SessionService) Rotate(ctx context.Context, db dbx.DBTX, session *models.Session) (*IssuedSession, error) {
	now := s.nowTime()
	if !session.Live(now) {
		return nil, common.ErrRefreshTokenExpired
	}

	secret, err := common.MakeRandHexString(refreshSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh secret: %w", err)
	}

	accessToken, err := auth.GenerateToken(session.UserID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	newHash := hashSecret(secret)
	newExpiry := now.Add(s.refreshTokenValidityDuration)
	if err := s.repomanager.Sessions(db).Rotate(ctx, session.ID, session.TokenHash, newHash, newExpiry); err != nil {
		return nil, err
	}

	rotated := &models.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		TokenHash: newHash,
		ExpiresAt: newExpiry,
		CreatedAt: session.CreatedAt,
		UpdatedAt: now,
	}
	return &IssuedSession{
		Session:         rotated,
		RefreshToken:    secret,
		AccessToken:     accessToken,
		AccessExpiresAt: now.Add(s.accessTokenValidityDuration),
	}, nil
}

// Authenticate verifies an access token offline and returns the embedded
// user id. No storage round-trip occurs; revoking a refresh session does not
// invalidate access tokens already minted from it.
func (s *SessionService) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

// Revoke terminally revokes the session; revoking twice is not an error.
func (s *SessionService) Revoke(ctx context.Context, db dbx.DBTX, sessionID string) error {
	return s.repomanager.Sessions(db).Revoke(ctx, sessionID)
}

// RevokeAllForUser revokes every live session owned by userID, e.g. after a
// password reset.
func (s *SessionService) RevokeAllForUser(ctx context.Context, db dbx.DBTX, userID string) error {
	return s.repomanager.Sessions(db).RevokeAllForUser(ctx, userID)
}
