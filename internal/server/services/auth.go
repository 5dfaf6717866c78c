package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/mail"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// AuthService composes the identity, credential, session, OTP, and
// email-verification services into the use cases the boundary layer calls.
// It is the only widening point of the error taxonomy: narrow component
// errors collapse here into the small outward set, deliberately losing the
// detail that would otherwise act as a credential or session oracle.
// Every use case runs under the configured operation timeout, bounding its
// persistence and hashing calls.
type AuthService struct {
	db                *sql.DB
	users             *UserService
	credentials       *CredentialService
	sessions          *SessionService
	otp               *OTPService
	emailVerification *EmailVerificationService
	mailer            mail.Mailer
	logger            logging.Logger
	opTimeout         time.Duration
}

// NewAuthService constructs the orchestrator. opTimeout bounds each use case;
// zero disables the bound.
func NewAuthService(
	db *sql.DB,
	users *UserService,
	credentials *CredentialService,
	sessions *SessionService,
	otp *OTPService,
	emailVerification *EmailVerificationService,
	mailer mail.Mailer,
	logger logging.Logger,
	opTimeout time.Duration,
) *AuthService {
	return &AuthService{
		db:                db,
		users:             users,
		credentials:       credentials,
		sessions:          sessions,
		otp:               otp,
		emailVerification: emailVerification,
		mailer:            mailer,
		logger:            logger.With("module", "auth_service"),
		opTimeout:         opTimeout,
	}
}

func (s *AuthService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Register creates a user and their credential inside one transaction, so a
// failed credential insert leaves no orphaned user row. A verification mail
// is then sent best-effort: its failure is logged, never propagated, since
// the registration is already committed.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.users.Create(ctx, tx, email)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrDuplicateEmail
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		if _, err := s.credentials.Create(ctx, tx, u.ID, password); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrHashingFailure) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	s.sendVerificationMail(ctx, user)
	return user, nil
}

// Login verifies the email/password pair and mints a new session. Unknown
// email and wrong password both collapse to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*IssuedSession, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	cred, err := s.credentials.GetByUserID(ctx, s.db, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	ok, err := s.credentials.Verify(password, cred.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	issued, err := s.sessions.Create(ctx, s.db, user.ID)
	if err != nil {
		return nil, common.ErrCreateSessionFailure
	}
	return issued, nil
}

// Refresh rotates the session identified by the presented refresh secret.
// Absent, expired, rotated, and revoked secrets are indistinguishable to the
// caller: all yield ErrRefreshTokenNotFound.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*IssuedSession, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	session, err := s.sessions.FindByToken(ctx, s.db, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, common.ErrorInternal
	}

	issued, err := s.sessions.Rotate(ctx, s.db, session)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) || errors.Is(err, common.ErrVersionConflict) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, common.ErrCreateSessionFailure
	}
	return issued, nil
}

// Revoke terminates the session identified by the presented refresh secret.
// Revoking an already-revoked or unknown secret yields
// ErrRefreshTokenNotFound; a second revoke of a live session id is a no-op.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	session, err := s.sessions.FindByToken(ctx, s.db, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrRefreshTokenNotFound
		}
		return common.ErrorInternal
	}

	if err := s.sessions.Revoke(ctx, s.db, session.ID); err != nil {
		return common.ErrRevokeSessionFailure
	}
	return nil
}

// Authenticate resolves a bearer access token to its user. Token failures
// pass through (ErrInvalidToken, ErrTokenExpired); a valid token whose user
// no longer exists yields ErrorUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	userID, err := s.sessions.Authenticate(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// VerifyEmail validates a verification envelope and marks the embedded user
// as verified. Token errors pass through unchanged (ErrInvalidToken,
// ErrTokenExpired) since they carry no account information.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	userID, err := s.emailVerification.Verify(token)
	if err != nil {
		return nil, err
	}

	if err := s.users.MarkEmailVerified(ctx, s.db, userID); err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.users.GetByID(ctx, s.db, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return user, nil
}

// RequestPasswordReset issues a reset code and mails it. Unknown emails
// return success without issuing anything, so the endpoint cannot be used to
// probe which addresses are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "password reset requested for unknown email")
			return nil
		}
		return common.ErrorInternal
	}

	issued, err := s.otp.Issue(ctx, s.db, user.ID, common.OTPPurposePasswordReset)
	if err != nil {
		return common.ErrorInternal
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Your password reset code",
		Body:    fmt.Sprintf("Use code %s to reset your password. It expires in a few minutes.", issued.Plain),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "error sending password reset mail", "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// ResetPassword consumes the reset code and replaces the credential,
// revoking every live session of the user in the same transaction. A wrong,
// expired, or reused code yields ErrInvalidCredentials uniformly.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.otp.VerifyAndConsume(ctx, tx, user.ID, common.OTPPurposePasswordReset, code)
		if err != nil {
			return fmt.Errorf("error consuming code: %w", err)
		}
		if !ok {
			return common.ErrInvalidCredentials
		}
		if err := s.credentials.UpdatePassword(ctx, tx, user.ID, newPassword); err != nil {
			return err
		}
		return s.sessions.RevokeAllForUser(ctx, tx, user.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) || errors.Is(err, common.ErrHashingFailure) {
			return err
		}
		return common.ErrorInternal
	}
	return nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *models.User) {
	link, err := s.emailVerification.IssueLink(user.ID)
	if err != nil {
		s.logger.Error(ctx, "error issuing verification token", "error", err.Error())
		return
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Verify your email address",
		Body:    fmt.Sprintf("Welcome! Confirm your address by opening: %s", link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "error sending verification mail", "error", err.Error())
	}
}
