package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	pb "github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// PublicProcedures lists the procedures callable without an access token.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
	apiconnect.AuthServiceRefreshProcedure,
	apiconnect.AuthServiceCheckAvailabilityProcedure,
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

func (s *AuthService) issue(user *models.User) (*connect.Response[pb.AuthResponse], error) {
	pair, err := s.jwtManager.GeneratePair(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}
	return connect.NewResponse(&pb.AuthResponse{
		User:         toUser(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}), nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[pb.RegisterRequest]) (*connect.Response[pb.AuthResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	user, err := s.authenticator.Register(ctx, auth.Registration{
		Email:       req.Msg.Email,
		PhoneNumber: req.Msg.PhoneNumber,
		FullName:    req.Msg.FullName,
		Credential:  req.Msg.Password,
	})
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return s.issue(user)
}

// Login authenticates a user and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[pb.LoginRequest]) (*connect.Response[pb.AuthResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if strings.TrimSpace(req.Msg.Email) == "" || req.Msg.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, req *connect.Request[pb.RefreshRequest]) (*connect.Response[pb.AuthResponse], error) {
	claims, err := s.jwtManager.Validate(req.Msg.RefreshToken, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return nil, auth.ErrAccountDisabled
	}

	s.logger.Info("Token refreshed", "user_id", user.ID)
	return s.issue(user)
}

// Logout ends the session. Tokens are stateless, so the client discards them.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// CheckAvailability reports whether an email, or a phone number when no email
// is given, is free to register.
func (s *AuthService) CheckAvailability(ctx context.Context, req *connect.Request[pb.CheckAvailabilityRequest]) (*connect.Response[pb.CheckAvailabilityResponse], error) {
	email := models.NormalizeEmail(req.Msg.Email)
	phone := strings.TrimSpace(req.Msg.PhoneNumber)

	var (
		field   string
		message string
		err     error
	)
	switch {
	case email != "":
		field, message = "email", "Email already registered"
		_, err = s.users.GetUserByEmail(ctx, email)
	case phone != "":
		field, message = "phoneNumber", "Phone number already registered"
		_, err = s.users.GetUserByPhone(ctx, phone)
	default:
		return nil, apperr.Validation("email or phone number is required")
	}

	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewResponse(&pb.CheckAvailabilityResponse{Available: true}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", field, err)
	}
	return connect.NewResponse(&pb.CheckAvailabilityResponse{
		Field:   field,
		Message: message,
	}), nil
}

func (s *AuthService) currentUser(ctx context.Context) (*models.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetProfile returns the authenticated user's account.
func (s *AuthService) GetProfile(ctx context.Context, req *connect.Request[pb.GetProfileRequest]) (*connect.Response[pb.ProfileResponse], error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.ProfileResponse{User: toUser(user)}), nil
}

// UpdateProfile changes the caller's name and/or phone number. Empty fields
// are left unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[pb.UpdateProfileRequest]) (*connect.Response[pb.ProfileResponse], error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Msg.FullName); name != "" {
		if err := auth.ValidateName(name); err != nil {
			return nil, err
		}
		user.FullName = name
	}
	if phone := strings.TrimSpace(req.Msg.PhoneNumber); phone != "" {
		if err := auth.ValidatePhone(phone); err != nil {
			return nil, err
		}
		user.PhoneNumber = phone
	}
	user.UpdatedAt = time.Now().Unix()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, auth.ErrPhoneExists
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", user.ID)
	return connect.NewResponse(&pb.ProfileResponse{User: toUser(user)}), nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, req *connect.Request[pb.ChangePasswordRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.authenticator.ChangeCredential(ctx, user, req.Msg.CurrentPassword, req.Msg.NewPassword); err != nil {
		s.logger.Warn("Password change failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Password changed", "user_id", user.ID)
	return connect.NewResponse(&emptypb.Empty{}), nil
}
