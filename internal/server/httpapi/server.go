// Package httpapi exposes the account service over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// UserService is the account logic the handlers call into.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	RequestResetCode(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (string, error)
}

type HTTPServer struct {
	address         string
	users           UserService
	logger          logging.Logger
	allowedOrigins  []string
	shutdownTimeout time.Duration
	now             func() time.Time
}

func NewHTTPServer(a string, l logging.Logger, us UserService, allowedOrigins []string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		users:           us,
		allowedOrigins:  allowedOrigins,
		shutdownTimeout: shutdownTimeout,
		now:             time.Now,
	}
}

// Handler returns the full middleware chain around the router.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.Handle("/protected", s.requireToken(http.HandlerFunc(s.protected))).Methods(http.MethodGet)
	r.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	r.HandleFunc("/request-reset-code", s.requestResetCode).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.resetPassword).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return s.withRequestID(s.accessLog(c.Handler(r)))
}

// Run serves until ctx is cancelled, then stops accepting connections and
// waits up to the shutdown timeout for in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
