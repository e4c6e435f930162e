package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Registration holds the details of a new account.
type Registration struct {
	Email       string
	PhoneNumber string
	FullName    string
	Credential  string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ChangeCredential replaces the user's credential after verifying the current one.
	ChangeCredential(ctx context.Context, user *models.User, current, next string) error

	// ValidateCredential checks if the credential meets the implementation's requirements.
	// For passwords: check length, complexity, etc.
	ValidateCredential(credential string) error
}
