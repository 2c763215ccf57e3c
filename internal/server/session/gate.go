// Package session turns a presented session token into an authenticated
// user. It is the single admission check shared by the HTTP API and the
// websocket handshake.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// TokenVerifier validates a token and returns the user id bound to it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder resolves a user id to the stored identity.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Gate authenticates requests.
type Gate struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewGate(tokens TokenVerifier, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate verifies token and loads its user.
//
// A missing, malformed, badly signed or expired token yields
// common.ErrUnauthenticated without touching storage. A valid token whose
// user no longer exists yields common.ErrIdentityNotFound. The returned user
// never carries the password hash.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token provided", common.ErrUnauthenticated)
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}

	user, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, err
	}

	return user.Public(), nil
}

type ctxKey string

const userKey ctxKey = "user"

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
