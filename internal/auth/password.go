package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameExists     = errors.New("username already taken")
	ErrEmailExists        = errors.New("email already registered")
)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	users storage.UserStore
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(users storage.UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password. Username and
// email must both be unused.
func (a *PasswordAuthenticator) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if err := a.ValidateCredential(reg.Password); err != nil {
		return nil, err
	}

	if existing, err := a.users.GetUserByUsername(ctx, reg.Username); err == nil && existing != nil {
		return nil, ErrUsernameExists
	}
	if existing, err := a.users.GetUserByEmail(ctx, reg.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     reg.Username,
		Email:        reg.Email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().Unix(),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the identifier (username or email) and password,
// returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, identifier)
	if err != nil {
		user, err = a.users.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
