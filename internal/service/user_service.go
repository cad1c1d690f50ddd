package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"smartledger/internal/config"
	"smartledger/internal/domain"
	"smartledger/internal/port"
)

// UserService covers account maintenance beyond the auth flow. It is consumed
// by operator tooling (billctl); the HTTP surface does not expose it.
type UserService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateEmail(ctx context.Context, userID, email string) error
	UpdatePassword(ctx context.Context, userID, password string) error
	// Delete removes the account. The user's bills are intentionally kept.
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	userRepo port.UserRepository
	cfg      config.AuthConfig
}

// NewUserService creates a new UserService implementation.
func NewUserService(userRepo port.UserRepository, cfg config.AuthConfig) UserService {
	return &userService{userRepo: userRepo, cfg: cfg}
}

func (s *userService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) UpdateEmail(ctx context.Context, userID, email string) error {
	return s.userRepo.UpdateEmail(ctx, userID, email)
}

func (s *userService) UpdatePassword(ctx context.Context, userID, password string) error {
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("user.UpdatePassword: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *userService) Delete(ctx context.Context, userID string) error {
	return s.userRepo.Delete(ctx, userID)
}
