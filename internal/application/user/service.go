package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
	"github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/smtp"
	"github.com/KhanhRomVN/foocipe-user-service/internal/pkg/id"
	pkgotp "github.com/KhanhRomVN/foocipe-user-service/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldName         = "name"
	fieldAvatar       = "avatar"
	fieldAddress      = "address"
	fieldBirthdate    = "birthdate"
)

const avatarURLTTL = time.Hour

// Service covers profile reads and the OTP-gated email/password change flows.
type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetDetail(ctx context.Context, userID, role string) (*domain.UserDetail, error)
	GetAddress(ctx context.Context, userID, role string) ([]domain.Address, error)
	UpdateUsername(ctx context.Context, userID, username string) error
	UpdateDetail(ctx context.Context, userID, role string, req domain.UpdateDetailRequest) (*domain.UserDetail, error)
	RequestEmailChange(ctx context.Context, newEmail string) error
	ChangeEmail(ctx context.Context, userID, newEmail, otp string) error
	ChangePassword(ctx context.Context, userID, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	UploadAvatar(ctx context.Context, userID, role, filename string, r io.Reader, contentType string) (string, error)
	AvatarURL(ctx context.Context, userID, role string) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type detailStore interface {
	Get(ctx context.Context, userID, role string) (*domain.UserDetail, error)
	Update(ctx context.Context, userID, role string, updates map[string]interface{}) error
}

type otpStore interface {
	Store(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) error
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

// notifier is the notification side channel: failures are logged by the
// notification service itself, never surfaced to the account flows.
type notifier interface {
	Create(ctx context.Context, input domain.CreateNotificationInput) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	userRepo   userStore
	detailRepo detailStore
	otpRepo    otpStore
	mailer     mailSender
	notifier   notifier
	objects    objectStore
	otpTTL     time.Duration
}

type ServiceDeps struct {
	UserRepo   userStore
	DetailRepo detailStore
	OTPRepo    otpStore
	Mailer     mailSender
	Notifier   notifier
	Objects    objectStore
	OTPTTL     time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:   deps.UserRepo,
		detailRepo: deps.DetailRepo,
		otpRepo:    deps.OTPRepo,
		mailer:     deps.Mailer,
		notifier:   deps.Notifier,
		objects:    deps.Objects,
		otpTTL:     deps.OTPTTL,
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *service) GetDetail(ctx context.Context, userID, role string) (*domain.UserDetail, error) {
	return s.detailRepo.Get(ctx, userID, role)
}

func (s *service) GetAddress(ctx context.Context, userID, role string) ([]domain.Address, error) {
	d, err := s.detailRepo.Get(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if d.Address == nil {
		return []domain.Address{}, nil
	}
	return d.Address, nil
}

func (s *service) UpdateUsername(ctx context.Context, userID, username string) error {
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		if existing.UserID == userID {
			return nil // no-op rename to the same name
		}
		return domain.Conflict(domain.CodeUsernameTaken, "this username is already in use")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{fieldUsername: username})
}

func (s *service) UpdateDetail(ctx context.Context, userID, role string, req domain.UpdateDetailRequest) (*domain.UserDetail, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.Birthdate != nil {
		if _, err := time.Parse("2006-01-02", *req.Birthdate); err != nil {
			return nil, domain.BadRequest(domain.CodeMissingFields, "birthdate must be in YYYY-MM-DD format")
		}
		updates[fieldBirthdate] = *req.Birthdate
	}
	if len(updates) == 0 {
		return s.detailRepo.Get(ctx, userID, role)
	}
	if err := s.detailRepo.Update(ctx, userID, role, updates); err != nil {
		return nil, err
	}
	return s.detailRepo.Get(ctx, userID, role)
}

// RequestEmailChange sends an OTP to the address the user wants to switch to.
// The code is keyed by the new address, so confirmation proves control of it.
func (s *service) RequestEmailChange(ctx context.Context, newEmail string) error {
	if _, err := s.userRepo.GetByEmail(ctx, newEmail); err == nil {
		return domain.Conflict(domain.CodeEmailExists, fmt.Sprintf("this <%s> is linked to another account", newEmail))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	code, err := pkgotp.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.otpRepo.Store(ctx, newEmail, code, s.otpTTL); err != nil {
		return err
	}
	return s.mailer.SendEmail(newEmail, "New Email OTP",
		smtp.OTPEmailHTML("New Email OTP", code, int(s.otpTTL.Minutes())))
}

func (s *service) ChangeEmail(ctx context.Context, userID, newEmail, otp string) error {
	if err := s.otpRepo.Consume(ctx, newEmail, otp); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{fieldEmail: newEmail}); err != nil {
		return err
	}
	_ = s.notifier.Create(ctx, domain.CreateNotificationInput{
		Title:     "Email Updated",
		Content:   fmt.Sprintf("Your email has been updated to %s", newEmail),
		Type:      domain.NotificationAccount,
		TargetIDs: []string{userID},
	})
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)}); err != nil {
		return err
	}
	_ = s.notifier.Create(ctx, domain.CreateNotificationInput{
		Title:     "Password Updated",
		Content:   "Your password has been updated successfully!",
		Type:      domain.NotificationAccount,
		TargetIDs: []string{userID},
	})
	return nil
}

// ForgotPassword always stores and sends a code, whether or not the address
// is registered — the reset step reports USER_NOT_FOUND instead.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	code, err := pkgotp.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.otpRepo.Store(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	return s.mailer.SendEmail(email, "Password Reset OTP",
		smtp.OTPEmailHTML("Password Reset OTP", code, int(s.otpTTL.Minutes())))
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := s.otpRepo.Consume(ctx, req.Email, req.OTP); err != nil {
		return err
	}
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{fieldPasswordHash: string(hash)}); err != nil {
		return err
	}
	_ = s.notifier.Create(ctx, domain.CreateNotificationInput{
		Title:     "Password Reset",
		Content:   "Your password has been reset successfully!",
		Type:      domain.NotificationAccount,
		TargetIDs: []string{u.UserID},
	})
	return nil
}

// UploadAvatar stores the image in S3 and records its object key on the
// detail record, removing the previous object when one exists.
func (s *service) UploadAvatar(ctx context.Context, userID, role, filename string, r io.Reader, contentType string) (string, error) {
	d, err := s.detailRepo.Get(ctx, userID, role)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("avatars/%s/%s%s", userID, id.New(), extFor(contentType, filename))
	if _, err := s.objects.Upload(ctx, key, r, contentType); err != nil {
		return "", err
	}
	if err := s.detailRepo.Update(ctx, userID, role, map[string]interface{}{fieldAvatar: key}); err != nil {
		return "", err
	}
	if d.Avatar != nil && *d.Avatar != "" {
		_ = s.objects.Delete(ctx, *d.Avatar) // best effort; orphan is harmless
	}
	return key, nil
}

// AvatarURL returns a time-limited presigned URL for the stored avatar.
func (s *service) AvatarURL(ctx context.Context, userID, role string) (string, error) {
	d, err := s.detailRepo.Get(ctx, userID, role)
	if err != nil {
		return "", err
	}
	if d.Avatar == nil || *d.Avatar == "" {
		return "", domain.NotFound(domain.CodeDetailNotFound, "no avatar set")
	}
	return s.objects.PresignedURL(ctx, *d.Avatar, avatarURLTTL)
}

func extFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
