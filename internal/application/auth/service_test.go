package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
	jwtinfra "github.com/KhanhRomVN/foocipe-user-service/internal/infrastructure/jwt"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.Called(ctx, email, code, ttl).Error(0)
}
func (m *mockOTPStore) Consume(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return m.Called(ctx, userID, refreshToken).Error(0)
}

type mockDetailStore struct{ mock.Mock }

func (m *mockDetailStore) Put(ctx context.Context, d *domain.UserDetail) error {
	return m.Called(ctx, d).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) IssueAccessToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockIssuer) IssueRefreshToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockIssuer) Verify(token, expectedType string) (*jwtinfra.Claims, error) {
	args := m.Called(token, expectedType)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- builder ---

func newTestService(os *mockOTPStore, us *mockUserStore, ds *mockDetailStore, is *mockIssuer, ml *mockMailer) Service {
	return NewService(ServiceDeps{
		OTPRepo:    os,
		UserRepo:   us,
		DetailRepo: ds,
		Issuer:     is,
		Mailer:     ml,
		OTPTTL:     15 * time.Minute,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	return de.Code
}

// --- RequestEmailOTP ---

func TestRequestEmailOTP_EmailAlreadyRegistered(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.RequestEmailOTP(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, domain.CodeEmailExists, codeOf(t, err))
}

func TestRequestEmailOTP_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	os.On("Store", mock.Anything, "a@b.com", mock.AnythingOfType("string"), 15*time.Minute).Return(nil)
	ml.On("SendEmail", "a@b.com", "Email OTP Confirmation", mock.Anything).Return(nil)

	svc := newTestService(os, us, nil, nil, ml)
	err := svc.RequestEmailOTP(context.Background(), "a@b.com")

	require.NoError(t, err)
	us.AssertExpectations(t)
	os.AssertExpectations(t)
	ml.AssertExpectations(t)

	// The emailed code has the 6-char hex shape.
	code := os.Calls[0].Arguments.String(2)
	assert.Len(t, code, 6)
}

func TestRequestEmailOTP_StorageErrorPropagates(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.StorageError(errors.New("boom")))

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.RequestEmailOTP(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
}

// --- Register ---

func registerReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:    "a@b.com",
		OTP:      "abc123",
		Username: "alice",
		Password: "password123",
	}
}

func TestRegister_InvalidOTP(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Consume", mock.Anything, "a@b.com", "abc123").
		Return(domain.BadRequest(domain.CodeInvalidOTP, "invalid OTP"))

	svc := newTestService(os, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidOTP, codeOf(t, err))
}

func TestRegister_ExpiredOTP_ReportedAsInvalid(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Consume", mock.Anything, "a@b.com", "abc123").
		Return(domain.BadRequest(domain.CodeExpiredOTP, "OTP has expired"))

	svc := newTestService(os, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	// Registration deliberately collapses expiry into the generic code.
	assert.Equal(t, domain.CodeInvalidOTP, codeOf(t, err))
}

func TestRegister_UsernameTaken_OTPAlreadySpent(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}

	os.On("Consume", mock.Anything, "a@b.com", "abc123").Return(nil)
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{UserID: "other"}, nil)

	svc := newTestService(os, us, nil, nil, nil)
	_, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	assert.Equal(t, domain.CodeUsernameTaken, codeOf(t, err))
	// The code was consumed before the username check; a retry needs a new OTP.
	os.AssertCalled(t, "Consume", mock.Anything, "a@b.com", "abc123")
}

func TestRegister_HappyPath(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ds := &mockDetailStore{}

	os.On("Consume", mock.Anything, "a@b.com", "abc123").Return(nil)
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.Email == "a@b.com" &&
			u.EmailConfirmed && u.Enable && u.Role == domain.RoleUser &&
			u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(nil)
	ds.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.UserDetail) bool {
		return d.Role == domain.RoleUser && d.Name == "alice"
	})).Return(nil)

	svc := newTestService(os, us, ds, nil, nil)
	u, err := svc.Register(context.Background(), registerReq())

	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	us.AssertExpectations(t)
	ds.AssertExpectations(t)
}

// --- Login ---

func TestLogin_EmailNotRegistered(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "pw"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Equal(t, domain.CodeEmailNotRegistered, codeOf(t, err))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: hashOf(t, "correct-password"),
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidPassword, codeOf(t, err))
}

func TestLogin_HappyPath_PersistsRefreshToken(t *testing.T) {
	us := &mockUserStore{}
	is := &mockIssuer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: hashOf(t, "password123"),
	}, nil)
	is.On("IssueAccessToken", "u1").Return("access-1", nil)
	is.On("IssueRefreshToken", "u1").Return("refresh-1", nil)
	us.On("UpdateRefreshToken", mock.Anything, "u1", "refresh-1").Return(nil)

	svc := newTestService(nil, us, nil, is, nil)
	pair, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
	us.AssertExpectations(t)
}

// --- VerifyAccount ---

func TestVerifyAccount_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: hashOf(t, "password123"),
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.VerifyAccount(context.Background(), domain.VerifyAccountRequest{Email: "a@b.com", Password: "password123"})

	require.NoError(t, err)
}

func TestVerifyAccount_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: hashOf(t, "password123"),
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.VerifyAccount(context.Background(), domain.VerifyAccountRequest{Email: "a@b.com", Password: "nope"})

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidPassword, codeOf(t, err))
}

// --- Refresh ---

func TestRefresh_EmptyToken(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)
	_, _, err := svc.Refresh(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, domain.CodeNoRefreshToken, codeOf(t, err))
}

func TestRefresh_VerifyFailurePropagates(t *testing.T) {
	is := &mockIssuer{}
	is.On("Verify", "bad-token", jwtinfra.TypeRefresh).
		Return(nil, domain.Unauthorized(domain.CodeTokenExpired, "token has expired"))

	svc := newTestService(nil, nil, nil, is, nil)
	_, _, err := svc.Refresh(context.Background(), "bad-token")

	require.Error(t, err)
	assert.Equal(t, domain.CodeTokenExpired, codeOf(t, err))
}

func TestRefresh_TokenNotInSlot(t *testing.T) {
	us := &mockUserStore{}
	is := &mockIssuer{}

	stored := "refresh-old"
	is.On("Verify", "refresh-stale", jwtinfra.TypeRefresh).
		Return(&jwtinfra.Claims{UserID: "u1", TokenType: jwtinfra.TypeRefresh}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RefreshToken: &stored}, nil)

	svc := newTestService(nil, us, nil, is, nil)
	_, _, err := svc.Refresh(context.Background(), "refresh-stale")

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidRefreshToken, codeOf(t, err))
}

func TestRefresh_EmptySlot(t *testing.T) {
	us := &mockUserStore{}
	is := &mockIssuer{}

	is.On("Verify", "refresh-1", jwtinfra.TypeRefresh).
		Return(&jwtinfra.Claims{UserID: "u1", TokenType: jwtinfra.TypeRefresh}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(nil, us, nil, is, nil)
	_, _, err := svc.Refresh(context.Background(), "refresh-1")

	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidRefreshToken, codeOf(t, err))
}

func TestRefresh_HappyPath_RotatesSlot(t *testing.T) {
	us := &mockUserStore{}
	is := &mockIssuer{}

	stored := "refresh-1"
	is.On("Verify", "refresh-1", jwtinfra.TypeRefresh).
		Return(&jwtinfra.Claims{UserID: "u1", TokenType: jwtinfra.TypeRefresh}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:       "u1",
		Username:     "alice",
		RefreshToken: &stored,
	}, nil)
	is.On("IssueAccessToken", "u1").Return("access-2", nil)
	is.On("IssueRefreshToken", "u1").Return("refresh-2", nil)
	us.On("UpdateRefreshToken", mock.Anything, "u1", "refresh-2").Return(nil)

	svc := newTestService(nil, us, nil, is, nil)
	pair, summary, err := svc.Refresh(context.Background(), "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "access-2", pair.AccessToken)
	assert.Equal(t, "refresh-2", pair.RefreshToken)
	assert.Equal(t, "alice", summary.Username)
	us.AssertCalled(t, "UpdateRefreshToken", mock.Anything, "u1", "refresh-2")
}
