package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Hasher is the one-way password hashing collaborator.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, digest string) bool
}

// SignupInput is the data needed to register a user.
type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService implements signup, login, profile updates and user listing.
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	hasher      Hasher
	media       media.Store
	logger      logging.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(m repomanager.RepositoryManager, tokens TokenIssuer, hasher Hasher, store media.Store, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		media:       store,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in SignupInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if len(in.Password) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, common.MinPasswordLength)
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	return nil
}

// Signup registers a user and returns it with a fresh session token.
// A taken email yields common.ErrConflict.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var created *models.User
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByEmail(ctx, user.Email)
		switch {
		case err == nil:
			return fmt.Errorf("%w: email already exists", common.ErrConflict)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		created, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, "", storageErr("signup", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", created.ID)
	return created.Public(), token, nil
}

// Login checks the credentials and returns the user with a fresh token.
// Unknown email and wrong password both yield common.ErrInvalidCredential.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", common.ErrInvalidCredential
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep timing close to the wrong-password path
			s.hasher.Compare(password, s.dummyDigest())
			return nil, "", common.ErrInvalidCredential
		}
		return nil, "", storageErr("login", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredential
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user.Public(), token, nil
}

func (s *UserService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = d
		}
	})
	return s.dummyHash
}

// UpdateProfile uploads the avatar image and stores its URL on the user.
func (s *UserService) UpdateProfile(ctx context.Context, userID, profilePic string) (*models.User, error) {
	if strings.TrimSpace(profilePic) == "" {
		return nil, fmt.Errorf("%w: profile pic is required", common.ErrValidation)
	}

	img, err := media.DecodeImage(profilePic)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, img.Data, img.ContentType)
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "user_id", userID, "error", err)
		return nil, err
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).UpdateProfilePic(ctx, userID, url)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, storageErr("update profile", err)
	}

	return user.Public(), nil
}

// Get returns a user by id without the credential hash.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, storageErr("get user", err)
	}
	return user.Public(), nil
}

// ListContacts returns every user except userID.
func (s *UserService) ListContacts(ctx context.Context, userID string) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.repomanager.Conn()).ListExcept(ctx, userID)
	if err != nil {
		return nil, storageErr("list users", err)
	}

	out := make([]*models.User, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return out, nil
}
