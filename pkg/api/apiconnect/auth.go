package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/settleup/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "settleup.v1.AuthService"

// Procedure paths of the AuthService.
const (
	AuthServiceRegisterProcedure       = "/settleup.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/settleup.v1.AuthService/Login"
	AuthServiceRefreshProcedure        = "/settleup.v1.AuthService/Refresh"
	AuthServiceLogoutProcedure         = "/settleup.v1.AuthService/Logout"
	AuthServiceGetProfileProcedure     = "/settleup.v1.AuthService/GetProfile"
	AuthServiceUpdateProfileProcedure  = "/settleup.v1.AuthService/UpdateProfile"
	AuthServiceChangePasswordProcedure = "/settleup.v1.AuthService/ChangePassword"

	AuthServiceCheckAvailabilityProcedure = "/settleup.v1.AuthService/CheckAvailability"
)

// AuthServiceHandler is implemented by the server.
type AuthServiceHandler interface {
	// Register creates an account and returns a token pair.
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	// Login exchanges email and password for a token pair.
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	// Refresh exchanges a refresh token for a new token pair.
	Refresh(context.Context, *connect.Request[api.RefreshRequest]) (*connect.Response[api.AuthResponse], error)
	// Logout ends the caller's session.
	Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error)
	// GetProfile returns the caller's account.
	GetProfile(context.Context, *connect.Request[api.GetProfileRequest]) (*connect.Response[api.ProfileResponse], error)
	// UpdateProfile changes the caller's name or phone number.
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.ProfileResponse], error)
	// ChangePassword replaces the caller's password.
	ChangePassword(context.Context, *connect.Request[api.ChangePasswordRequest]) (*connect.Response[emptypb.Empty], error)
	// CheckAvailability reports whether an email or phone number is unregistered.
	CheckAvailability(context.Context, *connect.Request[api.CheckAvailabilityRequest]) (*connect.Response[api.CheckAvailabilityResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for every AuthService procedure.
// It returns the path prefix to mount the handler on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	unary(mux, AuthServiceLoginProcedure, svc.Login, opts)
	unary(mux, AuthServiceRefreshProcedure, svc.Refresh, opts)
	unary(mux, AuthServiceLogoutProcedure, svc.Logout, opts)
	unary(mux, AuthServiceGetProfileProcedure, svc.GetProfile, opts)
	unary(mux, AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts)
	unary(mux, AuthServiceChangePasswordProcedure, svc.ChangePassword, opts)
	unary(mux, AuthServiceCheckAvailabilityProcedure, svc.CheckAvailability, opts)
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient calls a remote AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	Refresh(context.Context, *connect.Request[api.RefreshRequest]) (*connect.Response[api.AuthResponse], error)
	Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error)
	GetProfile(context.Context, *connect.Request[api.GetProfileRequest]) (*connect.Response[api.ProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.ProfileResponse], error)
	ChangePassword(context.Context, *connect.Request[api.ChangePasswordRequest]) (*connect.Response[emptypb.Empty], error)
	CheckAvailability(context.Context, *connect.Request[api.CheckAvailabilityRequest]) (*connect.Response[api.CheckAvailabilityResponse], error)
}

// NewAuthServiceClient returns a JSON client for the AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.AuthResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.AuthResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		refresh:        connect.NewClient[api.RefreshRequest, api.AuthResponse](httpClient, baseURL+AuthServiceRefreshProcedure, opts...),
		logout:         connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+AuthServiceLogoutProcedure, opts...),
		getProfile:     connect.NewClient[api.GetProfileRequest, api.ProfileResponse](httpClient, baseURL+AuthServiceGetProfileProcedure, opts...),
		updateProfile:  connect.NewClient[api.UpdateProfileRequest, api.ProfileResponse](httpClient, baseURL+AuthServiceUpdateProfileProcedure, opts...),
		changePassword: connect.NewClient[api.ChangePasswordRequest, emptypb.Empty](httpClient, baseURL+AuthServiceChangePasswordProcedure, opts...),
		checkAvailability: connect.NewClient[api.CheckAvailabilityRequest, api.CheckAvailabilityResponse](
			httpClient, baseURL+AuthServiceCheckAvailabilityProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.AuthResponse]
	login          *connect.Client[api.LoginRequest, api.AuthResponse]
	refresh        *connect.Client[api.RefreshRequest, api.AuthResponse]
	logout         *connect.Client[emptypb.Empty, emptypb.Empty]
	getProfile     *connect.Client[api.GetProfileRequest, api.ProfileResponse]
	updateProfile  *connect.Client[api.UpdateProfileRequest, api.ProfileResponse]
	changePassword *connect.Client[api.ChangePasswordRequest, emptypb.Empty]

	checkAvailability *connect.Client[api.CheckAvailabilityRequest, api.CheckAvailabilityResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Refresh(ctx context.Context, req *connect.Request[api.RefreshRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.refresh.CallUnary(ctx, req)
}

func (c *authServiceClient) Logout(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *authServiceClient) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.ProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}

func (c *authServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.ProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

func (c *authServiceClient) ChangePassword(ctx context.Context, req *connect.Request[api.ChangePasswordRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.changePassword.CallUnary(ctx, req)
}

func (c *authServiceClient) CheckAvailability(ctx context.Context, req *connect.Request[api.CheckAvailabilityRequest]) (*connect.Response[api.CheckAvailabilityResponse], error) {
	return c.checkAvailability.CallUnary(ctx, req)
}
