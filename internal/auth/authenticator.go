package auth

import (
	"context"

	"github.com/divvyhq/divvy/internal/models"
)

// Registration carries the fields needed to create an account.
type Registration struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Authenticator defines the interface for authentication implementations.
// The abstraction allows swapping auth methods (password, OAuth, etc.)
// without changing the handler layer.
type Authenticator interface {
	// Register creates a new user account. Returns the created user or an
	// error if registration fails.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if
	// successful. The identifier may be a username or an email address.
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's
	// requirements.
	ValidateCredential(credential string) error
}
