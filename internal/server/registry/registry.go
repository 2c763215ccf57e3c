// Package registry tracks which users currently hold a live delivery channel.
//
// At most one channel is registered per user. A newer registration replaces
// the older one (last registered wins); the replaced channel is not closed
// here, that stays the channel owner's job. Unregister only removes the entry
// it is given, so a late close of an old channel cannot evict a reconnect.
package registry

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Event is a server-to-client notification pushed over a channel.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Event names emitted to clients.
const (
	EventNewMessage     = "newMessage"
	EventGetOnlineUsers = "getOnlineUsers"
)

// NewMessageEvent wraps a persisted message for delivery.
func NewMessageEvent(m *models.Message) Event {
	return Event{Name: EventNewMessage, Payload: m}
}

// OnlineUsersEvent carries the ids of every connected user.
func OnlineUsersEvent(ids []string) Event {
	return Event{Name: EventGetOnlineUsers, Payload: ids}
}

// Channel is a live delivery channel. Push must not block: implementations
// enqueue or fail fast.
type Channel interface {
	Push(ev Event) error
}

// Registry is a concurrency-safe map from user id to its live channel.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

func New() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

// Register installs ch for userID, replacing any previous channel.
// It returns the replaced channel, or nil.
func (r *Registry) Register(userID string, ch Channel) Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.channels[userID]
	r.channels[userID] = ch
	return prev
}

// Unregister removes the entry for userID only if it still points at ch.
// It reports whether an entry was removed.
func (r *Registry) Unregister(userID string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.channels[userID]
	if !ok || cur != ch {
		return false
	}
	delete(r.channels, userID)
	return true
}

// Lookup returns the channel registered for userID.
func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[userID]
	return ch, ok
}

// Online returns the ids of all registered users, sorted.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Broadcast pushes ev to every registered channel and returns how many
// pushes failed. Channels are snapshotted first so no push runs under the lock.
func (r *Registry) Broadcast(ev Event) int {
	r.mu.RLock()
	targets := make([]Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		targets = append(targets, ch)
	}
	r.mu.RUnlock()

	failed := 0
	for _, ch := range targets {
		if err := ch.Push(ev); err != nil {
			failed++
		}
	}
	return failed
}
