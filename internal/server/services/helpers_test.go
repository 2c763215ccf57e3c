package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// 1x1 PNG as a data URL.
const pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type fakeStore struct {
	mu      sync.Mutex
	err     error
	uploads int
}

func (f *fakeStore) Upload(_ context.Context, _ []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	return "http://media.test/img-" + contentType, nil
}

type recordingChannel struct {
	mu     sync.Mutex
	events []registry.Event
	err    error
}

func (c *recordingChannel) Push(ev registry.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *recordingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// failingMessages wraps a real store and fails writes on demand.
type failingMessages struct {
	messages.Repository
	createErr error
	findErr   error
}

func (f *failingMessages) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Repository.Create(ctx, m)
}

func (f *failingMessages) FindByParticipants(ctx context.Context, a, b string) ([]*models.Message, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.Repository.FindByParticipants(ctx, a, b)
}

type failingUsers struct {
	users.Repository
	err error
}

func (f *failingUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f *failingUsers) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

type fakeRepoManager struct {
	*repomanager.MemoryRepositoryManager
	msgs  *failingMessages
	users users.Repository
}

func newFakeRepoManager() *fakeRepoManager {
	mem := repomanager.NewMemoryRepositoryManager()
	return &fakeRepoManager{
		MemoryRepositoryManager: mem,
		msgs:                    &failingMessages{Repository: mem.Messages(nil)},
	}
}

func (f *fakeRepoManager) Messages(dbx.DBTX) messages.Repository {
	return f.msgs
}

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	if f.users != nil {
		return f.users
	}
	return f.MemoryRepositoryManager.Users(db)
}

type fixture struct {
	repos    *fakeRepoManager
	tokens   *auth.TokenManager
	store    *fakeStore
	registry *registry.Registry
	users    *UserService
	messages *MessageService
}

func newFixture() *fixture {
	repos := newFakeRepoManager()
	tokens := auth.NewTokenManager("test-secret", 7*24*time.Hour)
	store := &fakeStore{}
	reg := registry.New()
	logger := logging.NewNopLogger()

	return &fixture{
		repos:    repos,
		tokens:   tokens,
		store:    store,
		registry: reg,
		users:    NewUserService(repos, tokens, auth.NewPasswordHasherWithCost(bcrypt.MinCost), store, logger),
		messages: NewMessageService(repos, reg, store, logger),
	}
}

func (f *fixture) signup(name, email string) *models.User {
	u, _, err := f.users.Signup(context.Background(), SignupInput{FullName: name, Email: email, Password: "secret1"})
	if err != nil {
		panic(err)
	}
	return u
}

var errDBDown = errors.New("connection refused")
