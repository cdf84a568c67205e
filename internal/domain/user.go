package domain

import "time"

// Roles partition user detail records. A user may hold one detail record per role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Username       string     `json:"username" dynamodbav:"username"`
	Email          string     `json:"email" dynamodbav:"email"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	RefreshToken   *string    `json:"-" dynamodbav:"refresh_token"` // single slot; overwritten on rotation
	Role           string     `json:"role" dynamodbav:"role"`
	EmailConfirmed bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	Enable         bool       `json:"enable" dynamodbav:"enable"`
	LastLogin      *time.Time `json:"last_login,omitempty" dynamodbav:"last_login"`
	RegisterAt     time.Time  `json:"register_at" dynamodbav:"register_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// UserSummary is the trimmed projection returned with refreshed token pairs.
type UserSummary struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{UserID: u.UserID, Username: u.Username}
}

type RequestEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
}

type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type VerifyAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
