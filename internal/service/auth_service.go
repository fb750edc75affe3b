package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// UserStore is the credential-store surface the auth service needs.
// *repository.UserRepository satisfies it.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	Count(ctx context.Context) (int, error)
}

type AuthService struct {
	users         UserStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration, users UserStore) (*AuthService, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, fmt.Errorf("auth secrets are required")
	}

	return &AuthService{
		users:         users,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// Login verifies credentials and issues an access/refresh token pair. Input
// validation happens before any store lookup.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, string, model.AuthUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", "", model.AuthUser{}, apierror.BadRequest("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", model.AuthUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", model.AuthUser{}, model.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	accessToken, err := s.signToken(s.accessSecret, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"typ":   tokenTypeAccess,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return "", "", model.AuthUser{}, err
	}

	refreshToken, err := s.signToken(s.refreshSecret, jwt.MapClaims{
		"sub": user.ID,
		"typ": tokenTypeRefresh,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return "", "", model.AuthUser{}, err
	}

	return accessToken, refreshToken, model.AuthUser{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// ValidateAccess verifies signature and expiry of an access token. Callers
// only learn pass/fail; the reason is not distinguished.
func (s *AuthService) ValidateAccess(tokenString string) (*model.AuthClaims, error) {
	return s.validate(tokenString, s.accessSecret, tokenTypeAccess)
}

func (s *AuthService) ValidateRefresh(tokenString string) (*model.AuthClaims, error) {
	return s.validate(tokenString, s.refreshSecret, tokenTypeRefresh)
}

// RefreshAccess mints a new access token from a valid refresh token. The
// refresh token itself is neither rotated nor invalidated, so the call is
// idempotent while the refresh token lives.
func (s *AuthService) RefreshAccess(refreshToken string) (string, error) {
	claims, err := s.ValidateRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	return s.signToken(s.accessSecret, jwt.MapClaims{
		"sub": claims.UserID,
		"typ": tokenTypeAccess,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	})
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return model.AuthUser{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// EnsureAdmin seeds the configured admin account when the user table is
// empty. A blank email or password skips seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return err
	}

	slog.Info("seeded admin account", "email", email)
	return nil
}

func (s *AuthService) validate(tokenString string, secret []byte, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != expectedType {
		return nil, model.ErrInvalidToken
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) signToken(secret []byte, claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
