// Package services holds the business logic between HTTP handlers and
// repositories: authentication, registration and paginated post access.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService handles authentication and account creation.
type AuthService struct {
	userRepo   *repository.UserRepository
	bcryptCost int
}

// NewAuthService creates an AuthService hashing with bcryptCost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewAuthService(bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   repository.NewUserRepository(),
		bcryptCost: bcryptCost,
	}
}

// Authenticate verifies username and password.
//
// Returns:
//   - *models.User: The authenticated user
//   - error: ErrInvalidCredentials for an unknown user or wrong password,
//     database error otherwise
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword hashes password with the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register hashes password and stores user. user.ID is set on success;
// a taken username yields repository.ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, user *models.User, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Create(ctx, user)
}
