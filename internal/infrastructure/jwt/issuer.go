package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

// Token types carried in the token_type claim. Verification callers check the
// type so an access token can never be presented as a refresh token or vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 JWTs with a shared secret. It performs no
// I/O: persisting refresh tokens is the caller's responsibility.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	return i.sign(userID, TypeAccess, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(userID, TypeRefresh, i.refreshTTL)
}

func (i *Issuer) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Verify parses and validates a token of the expected type. Expiry is reported
// as TOKEN_EXPIRED and every other failure (bad signature, tampered payload,
// wrong type) as TOKEN_INVALID, so callers can branch: expired access tokens
// prompt a refresh, invalid ones are rejected outright.
func (i *Issuer) Verify(tokenStr, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Unauthorized(domain.CodeTokenExpired, "token has expired")
		}
		return nil, domain.Unauthorized(domain.CodeTokenInvalid, "invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != expectedType {
		return nil, domain.Unauthorized(domain.CodeTokenInvalid, "invalid token")
	}
	return claims, nil
}
