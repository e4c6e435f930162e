// Package server assembles the HTTP handler: Connect services, health and
// metrics endpoints, and the optional static frontend.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// apiPrefix is the path prefix of every Connect procedure.
const apiPrefix = "/settleup.v1."

// Services are the Connect handlers to mount.
type Services struct {
	Auth      apiconnect.AuthServiceHandler
	Groups    apiconnect.GroupServiceHandler
	Expenses  apiconnect.ExpenseServiceHandler
	Reminders apiconnect.ReminderServiceHandler
}

// Options configures the router.
type Options struct {
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	// StaticPath serves a frontend from this directory when set.
	StaticPath string
	// Health reports whether dependencies are reachable.
	Health func(ctx context.Context) error
	// Metrics is exposed on /metrics when non-nil.
	Metrics *metrics.Metrics
	// HandlerOptions apply to every Connect handler, typically interceptors.
	HandlerOptions []connect.HandlerOption
}

// New returns the root handler, wrapped with h2c so Connect clients can use
// HTTP/2 without TLS.
func New(svcs Services, opts Options) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders:   []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mount := func(path string, h http.Handler) {
		r.Handle(path+"*", h)
	}
	// Services left nil are not mounted.
	if svcs.Auth != nil {
		mount(apiconnect.NewAuthServiceHandler(svcs.Auth, opts.HandlerOptions...))
	}
	if svcs.Groups != nil {
		mount(apiconnect.NewGroupServiceHandler(svcs.Groups, opts.HandlerOptions...))
	}
	if svcs.Expenses != nil {
		mount(apiconnect.NewExpenseServiceHandler(svcs.Expenses, opts.HandlerOptions...))
	}
	if svcs.Reminders != nil {
		mount(apiconnect.NewReminderServiceHandler(svcs.Reminders, opts.HandlerOptions...))
	}

	r.Get("/healthz", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	if opts.StaticPath != "" {
		staticDir, err := filepath.Abs(opts.StaticPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Serving static files", "path", staticDir)
		r.NotFound(staticHandler(staticDir))
	}

	return h2c.NewHandler(r, &http2.Server{}), nil
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				slog.Warn("Health check failed", "error", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

// staticHandler serves files from dir, falling back to index.html for
// unknown paths. Unknown API paths stay 404.
func staticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}
		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))

		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs every request with its status and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote_addr", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
