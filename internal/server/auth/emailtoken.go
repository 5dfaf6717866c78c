package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const emailTokenPurpose = "email_verification"

type emailClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// EmailTokenIssuer issues and verifies self-contained email-verification
// envelopes. Verification is stateless: signature plus embedded expiry are
// the only validity conditions, so a token stays valid for repeated use
// until it expires. There is no single-use guarantee here, unlike OTP codes.
type EmailTokenIssuer struct {
	secret   []byte
	validity time.Duration
}

// NewEmailTokenIssuer binds the issuer to its signing secret and token
// lifetime. The secret must be independent of the access-token secret.
func NewEmailTokenIssuer(secret []byte, validity time.Duration) *EmailTokenIssuer {
	return &EmailTokenIssuer{secret: secret, validity: validity}
}

// Issue builds a signed, URL-safe envelope for the subject (a user id).
// No storage write occurs.
func (i *EmailTokenIssuer) Issue(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, emailClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Purpose: emailTokenPurpose,
	})
	return token.SignedString(i.secret)
}

// Verify checks the signature and expiry and returns the subject.
// Expired envelopes yield common.ErrTokenExpired; tampered or foreign
// tokens (including access tokens presented here) yield
// common.ErrInvalidToken.
func (i *EmailTokenIssuer) Verify(tokenString string) (string, error) {
	claims := &emailClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != emailTokenPurpose || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
