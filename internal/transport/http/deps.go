package http

import (
	"github.com/incial/workhub-api/internal/application/otp"
	jwtinfra "github.com/incial/workhub-api/internal/infrastructure/jwt"
	"github.com/incial/workhub-api/internal/infrastructure/postgres"
)

// Deps holds all infrastructure dependencies for the router. OtpService is
// constructed by the caller because the purge job shares the same instance.
type Deps struct {
	UserRepo    *postgres.UserRepo
	CRMRepo     *postgres.CRMRepo
	OtpService  otp.Service
	JWTProvider *jwtinfra.Provider
}
