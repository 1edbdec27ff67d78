package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/infrastructure/smtp"
	"github.com/incial/workhub-api/internal/infrastructure/sns"
	"github.com/incial/workhub-api/internal/pkg/id"
)

// Expiry is how long an issued code stays redeemable.
const Expiry = 10 * time.Minute

const mailSubject = "Password Reset OTP"

type Service interface {
	// RequestCode supersedes any live code for the email, persists a fresh
	// one and dispatches it by mail. The returned code exists for tests and
	// logging; production callers deliver via email only.
	RequestCode(ctx context.Context, email string) (string, error)
	// RequestCodeWithSMS additionally sends the code to phone, best effort.
	RequestCodeWithSMS(ctx context.Context, email, phone string) (string, error)
	// VerifyCode claims the matching live code. Wrong, expired, already
	// verified and absent codes are all a plain false, not an error.
	VerifyCode(ctx context.Context, email, code string) (bool, error)
	// PurgeExpired sweeps rows whose expiry has passed.
	PurgeExpired(ctx context.Context) error
}

type otpStore interface {
	Replace(ctx context.Context, otp *domain.Otp) error
	Claim(ctx context.Context, email, code string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo      otpStore
	mailer    smtp.Mailer
	smsSender sns.SMSSender
	randSrc   io.Reader
	now       func() time.Time
}

type ServiceDeps struct {
	Repo      otpStore
	Mailer    smtp.Mailer
	SMSSender sns.SMSSender // optional
	RandSrc   io.Reader     // defaults to crypto/rand
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:      deps.Repo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		randSrc:   deps.RandSrc,
		now:       deps.Now,
	}
	if s.randSrc == nil {
		s.randSrc = rand.Reader
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, email string) (string, error) {
	return s.RequestCodeWithSMS(ctx, email, "")
}

func (s *service) RequestCodeWithSMS(ctx context.Context, email, phone string) (string, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	record := &domain.Otp{
		ID:        id.New(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(Expiry),
		Verified:  false,
		CreatedAt: now,
	}
	// Replace is delete-by-email + insert in one transaction, so at most
	// one live code per email survives any interleaving of requests.
	if err := s.repo.Replace(ctx, record); err != nil {
		return "", err
	}

	body := "Your OTP for password reset is: " + code + "\n\n" +
		"This OTP will expire in 10 minutes.\n\n" +
		"If you did not request this, please ignore this email."
	if err := s.mailer.Send(email, mailSubject, body); err != nil {
		// The stored code is kept: a later RequestCode supersedes it anyway.
		return "", fmt.Errorf("send OTP email: %v: %w", err, domain.ErrDelivery)
	}

	if phone != "" && s.smsSender != nil {
		if err := s.smsSender.SendSMS(ctx, phone, "Your password reset code: "+code); err != nil {
			slog.Warn("OTP SMS dispatch failed", "err", err)
		}
	}
	return code, nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	return s.repo.Claim(ctx, email, code, s.now().UTC())
}

func (s *service) PurgeExpired(ctx context.Context) error {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("purged expired OTP codes", "count", n)
	}
	return nil
}

// generateCode draws uniformly from the 1,000,000 possible 6-digit values,
// leading zeros included.
func (s *service) generateCode() (string, error) {
	n, err := rand.Int(s.randSrc, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return formatCode(n.Int64()), nil
}

func formatCode(n int64) string {
	return fmt.Sprintf("%06d", n)
}
