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

	"github.com/joho/godotenv"

	"github.com/KhanhRomVN/foocipe-user-service/internal/application/auth"
	"github.com/KhanhRomVN/foocipe-user-service/internal/config"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/dynamo"
	jwtinfra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/jwt"
	s3infra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/s3"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/smtp"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/sns"
	transporthttp "github.com/KhanhRomVN/foocipe-user-service/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	issuer, err := jwtinfra.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("jwt issuer: %v", err)
	}

	// S3 store for avatars.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS push publisher (optional — push is disabled when no topic is set).
	var publisher sns.Publisher
	if cfg.SNSTopicARN != "" {
		if p, err := sns.NewPublisher(cfg); err == nil {
			publisher = p
		} else {
			log.Printf("WARN: SNS publisher not available: %v", err)
		}
	}

	otpRepo := dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		DetailRepo:       dynamo.NewUserDetailRepo(dynamoClient, cfg.DynamoTables.UserDetails),
		OTPRepo:          otpRepo,
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		S3Store:          s3Store,
		Mailer:           mailer,
		Publisher:        publisher,
		Issuer:           issuer,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweep of expired OTP records; DynamoDB TTL is only a backstop.
	sweeper := auth.NewSweeper(otpRepo, cfg.OTPSweepInterval)
	sweeper.Start(context.Background())

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
	sweeper.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
