package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incial/workhub-api/internal/application/otp"
	"github.com/incial/workhub-api/internal/config"
	jwtinfra "github.com/incial/workhub-api/internal/infrastructure/jwt"
	"github.com/incial/workhub-api/internal/infrastructure/postgres"
	"github.com/incial/workhub-api/internal/infrastructure/smtp"
	"github.com/incial/workhub-api/internal/infrastructure/sns"
	"github.com/incial/workhub-api/internal/schedule"
	transporthttp "github.com/incial/workhub-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()
	if err := postgres.ApplyMigrations(db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback to email-only OTPs).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// One OTP service instance serves the HTTP flow and the purge job.
	otpSvc := otp.NewService(otp.ServiceDeps{
		Repo:      postgres.NewOtpRepo(db),
		Mailer:    mailer,
		SMSSender: smsSender,
	})

	deps := &transporthttp.Deps{
		UserRepo:    postgres.NewUserRepo(db),
		CRMRepo:     postgres.NewCRMRepo(db),
		OtpService:  otpSvc,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweep of expired OTP codes.
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(schedule.NewOtpPurgeJob(otpSvc), cfg.OtpPurgeSpec); err != nil {
		log.Fatalf("schedule OTP purge: %v", err)
	}
	scheduler.Start(schedCtx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
