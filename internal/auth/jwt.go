package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrInvalidToken = apperr.Unauthenticated("invalid or expired token")
	ErrMissingToken = apperr.Unauthenticated("authorization token required")
	ErrWrongToken   = apperr.Unauthenticated("wrong token type")
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey       []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is issued on login, registration and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // access token expiry, Unix seconds
}

// NewJWTManager creates a new JWT manager with the given secret and token lifetimes.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewJWTManager(secretKey string, accessDuration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secretKey),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// GeneratePair creates an access and a refresh token for the given user.
func (m *JWTManager) GeneratePair(user *models.User) (*TokenPair, error) {
	now := time.Now()
	access, err := m.sign(user, AccessToken, now, m.accessDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(user, RefreshToken, now, m.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(m.accessDuration).Unix(),
	}, nil
}

func (m *JWTManager) sign(user *models.User, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a JWT token of the expected type, returning
// the claims if valid.
func (m *JWTManager) Validate(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expected {
		return nil, ErrWrongToken
	}

	return claims, nil
}
