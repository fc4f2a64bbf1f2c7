package service

import (
	"context"
	"errors"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// UserService exposes user lookups for the API surface.
type UserService struct {
	store storage.Store
}

// NewUserService creates a UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user", userID)
	}
	if err != nil {
		return nil, apperr.Internal("user", err)
	}
	return user, nil
}

// GetByUsername returns a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user", username)
	}
	if err != nil {
		return nil, apperr.Internal("user", err)
	}
	return user, nil
}
