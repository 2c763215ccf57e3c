package messages

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Repository is the append-only message store.
type Repository interface {
	// Create persists m. The returned message carries the stored creation time.
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	// FindByParticipants returns every message exchanged between a and b in
	// either direction, oldest first. Ties on creation time are broken by id.
	FindByParticipants(ctx context.Context, a, b string) ([]*models.Message, error)
}
