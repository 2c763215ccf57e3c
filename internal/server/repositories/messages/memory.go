package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// MemoryRepository keeps messages in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages []models.Message
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemoryRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.CreatedAt = r.now()
	r.messages = append(r.messages, *m)
	return m, nil
}

func (r *MemoryRepository) FindByParticipants(ctx context.Context, a, b string) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Message, 0)
	for i := range r.messages {
		m := r.messages[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			result = append(result, &m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
