package jwtinfra

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
)

// DefaultValidity is the token lifetime used when JWT_EXPIRY is unset.
// 48 minutes, same window the service has always issued.
const DefaultValidity = 48 * time.Minute

// Claims holds the JWT payload fields.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a single process-lifetime
// symmetric key. The key is decoded once from a base64 secret at
// construction and never mutated afterwards.
type Provider struct {
	key      []byte
	validity time.Duration
	now      func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	key, err := base64.StdEncoding.DecodeString(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("decode JWT secret: %w", err)
	}
	validity := cfg.JWTExpiry
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Provider{key: key, validity: validity, now: time.Now}, nil
}

// WithClock replaces the provider's time source. Test hook.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Validity returns the configured token lifetime.
func (p *Provider) Validity() time.Duration { return p.validity }

// Issue mints a token bound to subject, valid from now until now+validity.
func (p *Provider) Issue(subject string) (string, error) {
	return p.IssueWithRole(subject, "")
}

// IssueWithRole mints a token carrying the user's role alongside the subject.
func (p *Provider) IssueWithRole(subject, role string) (string, error) {
	now := p.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.validity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.key)
}

// ExtractSubject parses and signature-verifies the token and returns its
// subject claim. Malformed, forged and expired tokens all come back as
// domain.ErrInvalidToken.
func (p *Provider) ExtractSubject(tokenStr string) (string, error) {
	claims, err := p.parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Verify parses and signature-verifies the token and returns its claims.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	return p.parse(tokenStr)
}

// IsValid reports whether tokenStr verifies, carries expectedSubject, and
// has not expired. Parse and signature failures are a negative result,
// never a panic or an escaping error.
func (p *Provider) IsValid(tokenStr, expectedSubject string) bool {
	claims, err := p.parse(tokenStr)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.After(p.now())
}

func (p *Provider) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.key, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}
	return claims, nil
}
