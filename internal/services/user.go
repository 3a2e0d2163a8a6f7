package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/neonpay/neonpay-gobackend/internal/models"
	"github.com/neonpay/neonpay-gobackend/internal/store"
)

// ErrInvalidCredentials is returned on login with a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserService struct {
	store store.UserStore
}

func NewUserService(s store.UserStore) *UserService {
	return &UserService{store: s}
}

// Signup hashes the password and creates the account.
func (s *UserService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "is required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "is required"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		HPassword: string(hashed),
		CreatedAt: time.Now(),
	}
	if _, err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and returns the account.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile fetches the account for the given principal.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.FindByID(ctx, userID)
}

// UpdateProfile renames the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "is required"}
	}
	return s.store.UpdateUsername(ctx, userID, username)
}
