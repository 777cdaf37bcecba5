//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"github.com/Pk1316/slot-swapper-backend/auth"
	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
	"github.com/Pk1316/slot-swapper-backend/repositories"
)

type Token string

type IAuthService interface {
	Signup(name, email, password string) (Token, domain.User, error)
	Login(email, password string) (Token, domain.User, error)
}

type AuthService struct {
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

func NewAuthService(users repositories.IUserRepository, tokenDuration time.Duration) *AuthService {
	return &AuthService{users: users, tokenDuration: tokenDuration}
}

func (s *AuthService) Signup(name, email, password string) (Token, domain.User, error) {
	req := auth.SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateSignup(req); err != nil {
		return "", domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens here so the repository never sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.users.Create(&user); err != nil {
		return "", domain.User{}, err // propagates ErrUserAlreadyExists
	}

	token, err := auth.GenerateToken(user.ID, s.tokenDuration)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) Login(email, password string) (Token, domain.User, error) {
	// A generic error for every failure mode prevents user enumeration.
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.tokenDuration)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}
