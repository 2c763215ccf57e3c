package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/dmitrijs2005/gophchat/internal/server/session"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Handler upgrades authenticated requests to websocket delivery channels.
type Handler struct {
	gate     Authenticator
	registry *registry.Registry
	logger   logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
	wg      sync.WaitGroup
}

func NewHandler(gate Authenticator, reg *registry.Registry, allowedOrigins []string, logger logging.Logger) *Handler {
	h := &Handler{
		gate:     gate,
		registry: reg,
		logger:   logger.With("module", "ws"),
		clients:  make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from an allowed origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.gate.Authenticate(ctx, session.TokenFromRequest(r, true))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthenticated):
			http.Error(w, "Unauthorized - Invalid Token", http.StatusUnauthorized)
		case errors.Is(err, common.ErrIdentityNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error(ctx, "websocket auth failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn(ctx, "websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	// the connection outlives the request
	connCtx := context.WithoutCancel(ctx)
	c := newClient(user.ID, conn, h.logger)
	h.connect(connCtx, c)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump(connCtx)
	}()
	go func() {
		defer h.wg.Done()
		c.readPump(connCtx)
		h.disconnect(connCtx, c)
	}()
}

func (h *Handler) connect(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.registry.Register(c.userID, c)
	h.logger.Info(ctx, "channel registered", "user_id", c.userID)
	h.broadcastPresence(ctx)
}

func (h *Handler) disconnect(ctx context.Context, c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.Close()

	if h.registry.Unregister(c.userID, c) {
		h.logger.Info(ctx, "channel unregistered", "user_id", c.userID)
		h.broadcastPresence(ctx)
	}
}

func (h *Handler) broadcastPresence(ctx context.Context) {
	if failed := h.registry.Broadcast(registry.OnlineUsersEvent(h.registry.Online())); failed > 0 {
		h.logger.Warn(ctx, "presence push failed", "channels", failed)
	}
}

// ActiveConnections counts open connections, including ones replaced in the
// registry by a newer connection of the same user.
func (h *Handler) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown closes every connection and waits for their pumps to exit or ctx
// to end.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	for c := range h.clients {
		c.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
