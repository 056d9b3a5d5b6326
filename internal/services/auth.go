package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/cheetahbyte/licensemgr/internal/config"
	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/golang-jwt/jwt/v5"
)

const (
	adminSubject = "admin"
	tokenIssuer  = "licensemgr"
)

var (
	ErrAuthDisabled       = errors.New("admin authentication is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService guards the admin routes with a single shared password and
// short-lived HS256 tokens.
type AuthService struct {
	secret       []byte
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthService(cfg config.AdminConfig) *AuthService {
	return &AuthService{
		secret:       []byte(cfg.JWTSecret),
		passwordHash: cfg.PasswordHash,
		ttl:          cfg.TokenTTL,
		now:          time.Now,
	}
}

func (a *AuthService) Enabled() bool { return len(a.secret) > 0 }

func (a *AuthService) Login(ctx context.Context, password string) (dto.LoginResponse, error) {
	if !a.Enabled() {
		return dto.LoginResponse{}, ErrAuthDisabled
	}

	match, err := argon2id.ComparePasswordAndHash(password, a.passwordHash)
	if err != nil {
		slog.ErrorContext(ctx, "admin password hash unusable", "err", err.Error())
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if !match {
		slog.WarnContext(ctx, "admin login rejected")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, expires, err := a.issue()
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("issue admin token: %w", err)
	}

	return dto.LoginResponse{Token: token, Expires: expires.UnixMilli()}, nil
}

func (a *AuthService) issue() (string, time.Time, error) {
	now := a.now().UTC()
	expires := now.Add(a.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (a *AuthService) Verify(token string) error {
	if !a.Enabled() {
		return nil
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// HashPassword produces the PHC string expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}
