package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
)

// EmailVerificationService issues and verifies stateless signed envelopes
// proving control of an email address. No storage is involved: tokens stay
// valid until their embedded expiry and cannot be revoked individually.
type EmailVerificationService struct {
	issuer     *auth.EmailTokenIssuer
	verifyBase string
}

// NewEmailVerificationService constructs the service. verifyBase is the
// public URL the verification link points at, e.g.
// "https://example.com/verify-email".
func NewEmailVerificationService(secret []byte, validity time.Duration, verifyBase string) *EmailVerificationService {
	return &EmailVerificationService{
		issuer:     auth.NewEmailTokenIssuer(secret, validity),
		verifyBase: verifyBase,
	}
}

// Issue returns a signed token for the user id.
func (s *EmailVerificationService) Issue(userID string) (string, error) {
	return s.issuer.Issue(userID)
}

// IssueLink returns a clickable verification URL embedding a fresh token.
func (s *EmailVerificationService) IssueLink(userID string) (string, error) {
	token, err := s.issuer.Issue(userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?token=%s", s.verifyBase, url.QueryEscape(token)), nil
}

// Verify validates the token and returns the embedded user id. Failures are
// common.ErrInvalidToken or common.ErrTokenExpired.
func (s *EmailVerificationService) Verify(token string) (string, error) {
	return s.issuer.Verify(token)
}
