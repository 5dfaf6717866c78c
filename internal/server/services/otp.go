package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// otpCodeLength is the number of decimal digits in an issued code.
const otpCodeLength = 6

// IssuedCode bundles a persisted OTP row with the raw code handed to the
// caller exactly once.
type IssuedCode struct {
	Code  *models.OTPCode
	Plain string
}

// OTPService issues and consumes time-boxed one-time codes. Issuing a new
// code does not invalidate earlier live codes for the same owner/purpose;
// multiple valid codes may coexist until each expires or is consumed.
type OTPService struct {
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	nowTime     func() time.Time
}

// OTPServiceOption modifies an OTPService during construction.
type OTPServiceOption func(*OTPService)

// WithOTPNowTime sets the clock source (primarily for testing).
func WithOTPNowTime(nowFunc func() time.Time) OTPServiceOption {
	return func(s *OTPService) {
		s.nowTime = nowFunc
	}
}

// NewOTPService constructs an OTPService with the given code lifetime.
func NewOTPService(m repomanager.RepositoryManager, ttl time.Duration, options ...OTPServiceOption) *OTPService {
	s := &OTPService{repomanager: m, ttl: ttl, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Issue generates a short numeric code from a cryptographically secure
// source and stores only its hash.
func (s *OTPService) Issue(ctx context.Context, db dbx.DBTX, userID, purpose string) (*IssuedCode, error) {
	plain, err := common.MakeRandDigits(otpCodeLength)
	if err != nil {
		return nil, fmt.Errorf("error generating code: %w", err)
	}

	code := &models.OTPCode{
		ID:        uuid.New().String(),
		UserID:    userID,
		Purpose:   purpose,
		CodeHash:  hashSecret(plain),
		ExpiresAt: s.nowTime().Add(s.ttl),
	}
	if err := s.repomanager.OTPCodes(db).Create(ctx, code); err != nil {
		return nil, fmt.Errorf("error storing code: %w", err)
	}

	return &IssuedCode{Code: code, Plain: plain}, nil
}

// VerifyAndConsume atomically checks and consumes the presented code.
// Wrong code, expired code, and already-consumed code all return false so
// callers cannot enumerate which condition failed.
func (s *OTPService) VerifyAndConsume(ctx context.Context, db dbx.DBTX, userID, purpose, presentedCode string) (bool, error) {
	return s.repomanager.OTPCodes(db).Consume(ctx, userID, purpose, hashSecret(presentedCode), s.nowTime())
}
