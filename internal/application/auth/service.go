package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/incial/workhub-api/internal/application/otp"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/id"
)

type Service interface {
	// Register creates the user and, like the original flow, logs them
	// straight in: the returned token is ready to use.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword performs the flow's single code verification itself:
	// codes are one-shot, so a separate pre-check would consume the code
	// before the reset could.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type tokenIssuer interface {
	IssueWithRole(subject, role string) (string, error)
}

type service struct {
	repo   userStore
	otpSvc otp.Service
	tokens tokenIssuer
}

type ServiceDeps struct {
	UserRepo    userStore
	OtpService  otp.Service
	TokenIssuer tokenIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, otpSvc: deps.OtpService, tokens: deps.TokenIssuer}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, "", fmt.Errorf("email cannot be empty: %w", domain.ErrBadRequest)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return nil, "", fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.IssueWithRole(u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message for unknown email and wrong password.
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	token, err := s.tokens.IssueWithRole(u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}
	_, err = s.otpSvc.RequestCodeWithSMS(ctx, u.Email, phone)
	return err
}

func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ok, err := s.otpSvc.VerifyCode(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid or expired OTP: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, email, string(hash))
}
