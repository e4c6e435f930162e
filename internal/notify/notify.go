// Package notify delivers SMS messages.
package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Sender delivers a text message to a phone number and returns the
// provider's message ID.
type Sender interface {
	Send(ctx context.Context, phone, body string) (string, error)
}

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// FormatPhone normalises a phone number to E.164. Numbers without a leading
// "+" are assumed to be in defaultCountryCode when they have exactly ten
// digits.
func FormatPhone(phone, defaultCountryCode string) (string, error) {
	phone = strings.TrimSpace(phone)
	international := strings.HasPrefix(phone, "+")

	var digits strings.Builder
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("phone number %q contains invalid character %q", phone, r)
		}
	}

	d := digits.String()
	if len(d) < minPhoneDigits || len(d) > maxPhoneDigits {
		return "", fmt.Errorf("phone number must have %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	if !international && len(d) == minPhoneDigits {
		d = strings.TrimPrefix(defaultCountryCode, "+") + d
	}
	return "+" + d, nil
}
