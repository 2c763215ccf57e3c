package users

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Repository is the identity store. Email is unique: Create reports a
// duplicate with common.ErrConflict; lookups report absence with
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfilePic(ctx context.Context, id string, profilePic string) (*models.User, error)
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
}
