package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/incial/workhub-api/internal/application/auth"
	"github.com/incial/workhub-api/internal/application/crm"
	"github.com/incial/workhub-api/internal/application/user"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/transport/http/handler"
	appmiddleware "github.com/incial/workhub-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OtpService:  deps.OtpService,
		TokenIssuer: deps.JWTProvider,
	})
	userSvc := user.NewService(deps.UserRepo)
	crmSvc := crm.NewService(deps.CRMRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	crmH := handler.NewCRMHandler(crmSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/forgot-password", authH.ForgotPassword)
		r.Post("/auth/reset-password", authH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Post("/crm", crmH.Create)
			r.Get("/crm", crmH.List)
			r.Get("/crm/high-value", crmH.GetHighValueDeals)
			r.Get("/crm/followups/upcoming", crmH.GetUpcomingFollowUps)
			r.Get("/crm/followups/on", crmH.GetFollowUpsOnDate)
			r.Get("/crm/status/{status}", crmH.GetByStatus)
			r.Get("/crm/assigned/{user}", crmH.GetByAssigned)
			r.Get("/crm/tag/{tag}", crmH.GetByTag)
			r.Get("/crm/lead-source/{source}", crmH.GetByLeadSource)
			r.Get("/crm/{id}", crmH.Get)
			r.Put("/crm/{id}", crmH.Update)
			r.Delete("/crm/{id}", crmH.Delete)

			r.Get("/users/{id}", userH.Get)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
