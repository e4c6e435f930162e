package auth

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/mmynk/settleup/internal/apperr"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxNameLength     = 100
	minPhoneDigits    = 10
	maxPhoneDigits    = 15
)

// ValidatePassword checks length and requires upper case, lower case and a digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return apperr.Validation("password must be at most %d bytes", maxPasswordLength)
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return apperr.Validation("password must contain an upper case letter")
	case !lower:
		return apperr.Validation("password must contain a lower case letter")
	case !digit:
		return apperr.Validation("password must contain a digit")
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return apperr.Validation("invalid email address")
	}
	return nil
}

// ValidatePhone accepts 10 to 15 digits with optional "+", spaces, dashes,
// dots and parentheses.
func ValidatePhone(phone string) error {
	digits := 0
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune("+ -().", r):
		default:
			return apperr.Validation("phone number contains invalid characters")
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return apperr.Validation("phone number must have %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("full name is required")
	}
	if len(name) > maxNameLength {
		return apperr.Validation("full name must be at most %d characters", maxNameLength)
	}
	return nil
}
