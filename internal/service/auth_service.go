package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"smartledger/internal/config"
	"smartledger/internal/domain"
	"smartledger/internal/port"
)

// RegisterInput is the DTO for registration requests. UserID is optional;
// when absent a UUID is generated server-side.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	UserID   string `json:"user_id"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenIdentity is the result of a successful token validation.
type TokenIdentity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// AuthService owns the token lifecycle: registration, credential login with
// token issuance, and read-only token validation.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*domain.User, error)
	VerifyToken(ctx context.Context, token string) (*TokenIdentity, error)
}

type authService struct {
	userRepo port.UserRepository
	cfg      config.AuthConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(userRepo port.UserRepository, cfg config.AuthConfig) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	userID := input.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	user := &domain.User{
		UserID:       userID,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	expiresAt := time.Now().Add(s.tokenExpiry()).Format(domain.TokenTimeLayout)

	// Overwrites any previously issued token: one active token per user,
	// last writer wins under concurrent logins.
	if err := s.userRepo.SetToken(ctx, user.UserID, token, expiresAt); err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	user.Token = token
	user.TokenExpiresAt = expiresAt
	return user, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (*TokenIdentity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	// Local-testing override; disabled unless explicitly configured.
	if s.cfg.DebugToken != "" && token == s.cfg.DebugToken {
		return &TokenIdentity{UserID: "debug", Email: "debug@localhost"}, nil
	}

	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.VerifyToken: %w", err)
	}

	// The expiry column is text; anything that fails to parse counts as an
	// invalid token rather than an internal error.
	expiresAt, err := time.ParseInLocation(domain.TokenTimeLayout, user.TokenExpiresAt, time.Local)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if time.Now().After(expiresAt) {
		return nil, domain.ErrUnauthorized
	}

	return &TokenIdentity{
		UserID:    user.UserID,
		Email:     user.Email,
		ExpiresAt: user.TokenExpiresAt,
	}, nil
}

func (s *authService) tokenExpiry() time.Duration {
	if s.cfg.TokenExpiry > 0 {
		return s.cfg.TokenExpiry
	}
	return 30 * 24 * time.Hour
}

// generateToken returns a URL-safe bearer token with 256 bits of entropy.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
