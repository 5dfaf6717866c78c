// Package httpapi exposes the auth core over a small JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// AuthCore is the slice of the orchestrator the API needs. Satisfied by
// *services.AuthService.
type AuthCore interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.IssuedSession, error)
	Refresh(ctx context.Context, refreshToken string) (*services.IssuedSession, error)
	Revoke(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type HTTPServer struct {
	address      string
	auth         AuthCore
	logger       logging.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, auth AuthCore, readTimeout, writeTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:      a,
		logger:       l.With("module", "http_server"),
		auth:         auth,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Run serves the API until ctx is cancelled, then drains in-flight requests.
// The listener carries the configured read/write deadlines so a stalled
// client cannot hold a connection open indefinitely.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.handleMe)
	mux.HandleFunc("GET /api/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("POST /api/password-reset/request", s.handlePasswordResetRequest)
	mux.HandleFunc("POST /api/password-reset/confirm", s.handlePasswordResetConfirm)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return mux
}
