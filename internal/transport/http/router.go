package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/KhanhRomVN/foocipe-user-service/internal/application/auth"
	"github.com/KhanhRomVN/foocipe-user-service/internal/application/notification"
	"github.com/KhanhRomVN/foocipe-user-service/internal/application/user"
	"github.com/KhanhRomVN/foocipe-user-service/internal/config"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/dynamo"
	jwtinfra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/jwt"
	s3infra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/s3"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/smtp"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/sns"
	"github.com/KhanhRomVN/foocipe-user-service/internal/transport/http/handler"
	appmiddleware "github.com/KhanhRomVN/foocipe-user-service/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	DetailRepo       *dynamo.UserDetailRepo
	OTPRepo          *dynamo.OTPRepo
	NotificationRepo *dynamo.NotificationRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	Publisher        sns.Publisher // nil disables push
	Issuer           *jwtinfra.Issuer
}

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

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifSvc := notification.NewService(deps.NotificationRepo, deps.Publisher)
	authSvc := auth.NewService(auth.ServiceDeps{
		OTPRepo:    deps.OTPRepo,
		UserRepo:   deps.UserRepo,
		DetailRepo: deps.DetailRepo,
		Issuer:     deps.Issuer,
		Mailer:     deps.Mailer,
		OTPTTL:     cfg.OTPTTL,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:   deps.UserRepo,
		DetailRepo: deps.DetailRepo,
		OTPRepo:    deps.OTPRepo,
		Mailer:     deps.Mailer,
		Notifier:   notifSvc,
		Objects:    deps.S3Store,
		OTPTTL:     cfg.OTPTTL,
	})

	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", handler.Health)
		r.With(sensitiveRL.Limit).Post("/auth/email-otp", authH.RequestEmailOTP)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)
		r.With(sensitiveRL.Limit).Post("/password/forgot", userH.ForgotPassword)
		r.With(sensitiveRL.Limit).Post("/password/reset", userH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Issuer))

			r.Post("/auth/verify-account", authH.VerifyAccount)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/username", userH.UpdateUsername)
			r.Get("/users/me/detail", userH.Detail)
			r.Put("/users/me/detail", userH.UpdateDetail)
			r.Get("/users/me/address", userH.Address)
			r.Post("/users/me/email-otp", userH.RequestEmailChange)
			r.Put("/users/me/email", userH.ChangeEmail)
			r.Put("/users/me/password", userH.ChangePassword)
			r.Post("/users/me/avatar", userH.UploadAvatar)
			r.Get("/users/me/avatar", userH.AvatarURL)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{notificationID}", notifH.MarkAsRead)
		})
	})

	return r
}
