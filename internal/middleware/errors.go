package middleware

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/apperr"
)

// ConnectError converts a domain error into a *connect.Error with the
// matching code. Unknown errors become CodeInternal with a generic message
// so storage details never reach clients.
func ConnectError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		conflict   *apperr.ConflictError
		authErr    *apperr.AuthError
		dependency *apperr.DependencyError
	)
	switch {
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, validation)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, notFound)
	case errors.As(err, &conflict):
		if conflict.Duplicate {
			return connect.NewError(connect.CodeAlreadyExists, conflict)
		}
		return connect.NewError(connect.CodeFailedPrecondition, conflict)
	case errors.As(err, &authErr):
		if authErr.Forbidden {
			return connect.NewError(connect.CodePermissionDenied, authErr)
		}
		return connect.NewError(connect.CodeUnauthenticated, authErr)
	case errors.As(err, &dependency):
		return connect.NewError(connect.CodeUnavailable, errors.New(dependency.Message))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}

// ErrorInterceptor maps errors returned by handlers and inner interceptors to
// Connect codes. Internal errors are logged with their full detail here.
func ErrorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err == nil {
				return resp, nil
			}

			mapped := ConnectError(err)
			if connect.CodeOf(mapped) == connect.CodeInternal {
				slog.Error("Unhandled error",
					"procedure", req.Spec().Procedure,
					"error", err,
				)
			}
			return nil, mapped
		}
	}
}
