// Package httpapi exposes the chat backend over HTTP: auth and message
// routes, plus the websocket endpoint.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// Users is the identity lifecycle the API serves.
type Users interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	UpdateProfile(ctx context.Context, userID, profilePic string) (*models.User, error)
	ListContacts(ctx context.Context, userID string) ([]*models.User, error)
}

// Messages sends and lists direct messages.
type Messages interface {
	Send(ctx context.Context, senderID, receiverID string, content models.Content) (*models.Message, error)
	History(ctx context.Context, userID, otherID string) ([]*models.Message, error)
}

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Realtime is the websocket endpoint. Shutdown closes all live channels.
type Realtime interface {
	http.Handler
	Shutdown(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	Address        string
	AllowedOrigins []string
	CookieSecure   bool
	CookieMaxAge   time.Duration
}

type Server struct {
	opts     Options
	users    Users
	messages Messages
	gate     Authenticator
	realtime Realtime
	logger   logging.Logger
}

func NewServer(opts Options, l logging.Logger, us Users, ms Messages, gate Authenticator, rt Realtime) *Server {
	return &Server{
		opts:     opts,
		users:    us,
		messages: ms,
		gate:     gate,
		realtime: rt,
		logger:   l.With("module", "http_server"),
	}
}

// Handler returns the routed handler with middlewares applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.health).Methods(http.MethodGet)
	r.Handle("/ws", s.realtime)

	a := r.PathPrefix("/api/auth").Subrouter()
	a.HandleFunc("/signup", s.signup).Methods(http.MethodPost)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	a.HandleFunc("/update-profile", s.requireSession(s.updateProfile)).Methods(http.MethodPut)
	a.HandleFunc("/check", s.requireSession(s.checkAuth)).Methods(http.MethodGet)

	m := r.PathPrefix("/api/messages").Subrouter()
	m.HandleFunc("/users", s.requireSession(s.listUsers)).Methods(http.MethodGet)
	m.HandleFunc("/send/{id}", s.requireSession(s.sendMessage)).Methods(http.MethodPost)
	m.HandleFunc("/{id}", s.requireSession(s.history)).Methods(http.MethodGet)

	return chainMiddlewares(r, withCORS(s.opts.AllowedOrigins), withLogging(s.logger))
}

// Run serves until ctx is cancelled, then shuts the server and the live
// channels down.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
		if err := s.realtime.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "websocket shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("gophchat is running"))
}
