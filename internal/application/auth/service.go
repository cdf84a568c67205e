package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
	jwtinfra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/jwt"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/smtp"
	"github.com/KhanhRomVN/foocipe-user-service/internal/pkg/id"
	pkgotp "github.com/KhanhRomVN/foocipe-user-service/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

// Service orchestrates registration, login, refresh and account verification.
type Service interface {
	RequestEmailOTP(ctx context.Context, email string) error
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)
	VerifyAccount(ctx context.Context, req domain.VerifyAccountRequest) error
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, *domain.UserSummary, error)
}

type otpStore interface {
	Store(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
}

type detailStore interface {
	Put(ctx context.Context, d *domain.UserDetail) error
}

type tokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	Verify(token, expectedType string) (*jwtinfra.Claims, error)
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	otpRepo    otpStore
	userRepo   userStore
	detailRepo detailStore
	issuer     tokenIssuer
	mailer     mailSender
	otpTTL     time.Duration
}

type ServiceDeps struct {
	OTPRepo    otpStore
	UserRepo   userStore
	DetailRepo detailStore
	Issuer     tokenIssuer
	Mailer     mailSender
	OTPTTL     time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:    deps.OTPRepo,
		userRepo:   deps.UserRepo,
		detailRepo: deps.DetailRepo,
		issuer:     deps.Issuer,
		mailer:     deps.Mailer,
		otpTTL:     deps.OTPTTL,
	}
}

// RequestEmailOTP starts registration: rejects already-registered addresses,
// stores a fresh code (superseding any live one) and emails it.
func (s *service) RequestEmailOTP(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return domain.Conflict(domain.CodeEmailExists, fmt.Sprintf("this <%s> is linked to another account", email))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	code, err := pkgotp.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.otpRepo.Store(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	return s.mailer.SendEmail(email, "Email OTP Confirmation",
		smtp.OTPEmailHTML("Email OTP Confirmation", code, int(s.otpTTL.Minutes())))
}

// Register completes registration. The OTP is consumed before the username
// uniqueness check: a USERNAME_TAKEN failure leaves the code spent, and the
// caller must request a new one before retrying.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := s.otpRepo.Consume(ctx, req.Email, req.OTP); err != nil {
		var de *domain.Error
		if errors.As(err, &de) && (de.Code == domain.CodeInvalidOTP || de.Code == domain.CodeExpiredOTP) {
			return nil, domain.BadRequest(domain.CodeInvalidOTP, "invalid or expired OTP")
		}
		return nil, err
	}

	// Uniqueness is check-then-put: two concurrent registrations can both
	// pass the GSI lookups before either PutItem lands. DynamoDB has no
	// unique constraint to backstop the window; the race is accepted.
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, domain.Conflict(domain.CodeUsernameTaken, "this username is already in use")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:         id.New(),
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           domain.RoleUser,
		EmailConfirmed: true, // proven by the OTP round-trip
		Enable:         true,
		RegisterAt:     now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	d := &domain.UserDetail{
		UserID:    u.UserID,
		Role:      domain.RoleUser,
		Name:      req.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.detailRepo.Put(ctx, d); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized(domain.CodeEmailNotRegistered, "this email has not been registered")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.Unauthorized(domain.CodeInvalidPassword, "this password is not valid")
	}
	return s.issuePair(ctx, u.UserID)
}

// VerifyAccount re-checks credentials without issuing tokens. Clients call it
// before sensitive profile operations.
func (s *service) VerifyAccount(ctx context.Context, req domain.VerifyAccountRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Unauthorized(domain.CodeEmailNotRegistered, "this email has not been registered")
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return domain.Unauthorized(domain.CodeInvalidPassword, "this password is not valid")
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// must match the single stored slot; rotation overwrites the slot so the
// previous token stops validating.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, *domain.UserSummary, error) {
	if refreshToken == "" {
		return nil, nil, domain.Unauthorized(domain.CodeNoRefreshToken, "refresh token not provided")
	}
	claims, err := s.issuer.Verify(refreshToken, jwtinfra.TypeRefresh)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.Unauthorized(domain.CodeInvalidRefreshToken, "invalid refresh token")
		}
		return nil, nil, err
	}
	if u.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*u.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, nil, domain.Unauthorized(domain.CodeInvalidRefreshToken, "invalid refresh token")
	}
	pair, err := s.issuePair(ctx, u.UserID)
	if err != nil {
		return nil, nil, err
	}
	summary := u.Summary()
	return pair, &summary, nil
}

// issuePair issues a fresh access/refresh pair and persists the refresh token.
func (s *service) issuePair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, refresh); err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
