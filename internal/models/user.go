package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, stored lower-cased).
	// Used for login and for adding the user to groups.
	Email string

	// PhoneNumber is where payment reminders are sent (unique).
	PhoneNumber string

	// FullName is the display name used in reminders.
	FullName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Active is false for deactivated accounts, which cannot log in.
	Active bool

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates an active user with a fresh ID and timestamps.
func NewUser(email, phoneNumber, fullName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(email),
		PhoneNumber:  strings.TrimSpace(phoneNumber),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
