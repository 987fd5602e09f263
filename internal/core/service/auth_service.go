package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService resolves cashier credentials into the profile that
// supplies branch and currency context for a POS session.
type AuthService struct {
	profiles port.ProfileRepository
}

func NewAuthService(profiles port.ProfileRepository) *AuthService {
	return &AuthService{profiles: profiles}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	out := *profile
	out.PasswordHash = ""
	return &out, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
