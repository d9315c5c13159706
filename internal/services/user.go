package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrunetcore/farmhub/internal/storage"
	"github.com/agrunetcore/farmhub/internal/store"
	"github.com/agrunetcore/farmhub/types"
)

// DefaultAvatar is the avatar reference assigned to new accounts.
const DefaultAvatar = "/images/default-avatar.png"

// ErrInvalidCredentials is returned when email or password do not match a
// registered user.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserRepository defines persistence operations for the simulated
// registered-user list.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates account use-cases: sign-up, credential checks,
// and profile avatar updates.
type UserService struct {
	repo    UserRepository
	avatars *storage.AvatarStore
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// WithAvatarStore enables avatar uploads. A nil store leaves them disabled.
func (s *UserService) WithAvatarStore(avatars *storage.AvatarStore) *UserService {
	s.avatars = avatars
	return s
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// SignUp creates an account with the default user role. The email must not
// already be registered.
func (s *UserService) SignUp(ctx context.Context, name, email, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         types.RoleUser,
		Avatar:       DefaultAvatar,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	})
}

// Authenticate verifies credentials against the stored bcrypt hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SaveAvatar uploads an avatar image and records its reference on the
// user's profile, returning the updated user.
func (s *UserService) SaveAvatar(ctx context.Context, userID, filename, contentType string, r io.Reader, size int64) (types.User, error) {
	if s.avatars == nil {
		return types.User{}, errors.New("avatar storage is not configured")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	key := fmt.Sprintf("avatars/%s%s", userID, path.Ext(filename))
	if err := s.avatars.Save(ctx, key, r, size, contentType); err != nil {
		return types.User{}, err
	}

	user.Avatar = key
	return s.repo.Update(ctx, user)
}
