package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agrunetcore/farmhub/types"
)

// UserRepository persists the locally simulated registered-user list in a
// JSON file. It exists to back the demo sign-up/sign-in flow and is never
// reconciled with the farmer store.
type UserRepository struct {
	path string
	mu   sync.Mutex
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return types.User{}, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return types.User{}, err
	}
	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

// Create adds a user, failing with ErrConflict when the email is taken.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return types.User{}, err
	}
	for _, existing := range users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, ErrConflict
		}
	}

	users = append(users, user)
	if err := r.save(users); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// Update replaces the stored user with the same ID.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return types.User{}, err
	}
	for i, existing := range users {
		if existing.ID == user.ID {
			users[i] = user
			if err := r.save(users); err != nil {
				return types.User{}, err
			}
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

type storedUser struct {
	types.User
	// Hash is persisted separately because PasswordHash is excluded from
	// the User JSON shape exposed over the API.
	Hash string `json:"passwordHash,omitempty"`
}

func (r *UserRepository) load() ([]types.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.User{}, nil
		}
		return nil, fmt.Errorf("read user store: %w", err)
	}

	var raw []storedUser
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse user store: %w", err)
	}

	users := make([]types.User, 0, len(raw))
	for _, entry := range raw {
		user := entry.User
		user.PasswordHash = entry.Hash
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepository) save(users []types.User) error {
	raw := make([]storedUser, 0, len(users))
	for _, user := range users {
		raw = append(raw, storedUser{User: user, Hash: user.PasswordHash})
	}

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("init user store: %w", err)
	}
	if err := os.WriteFile(r.path, out, 0o644); err != nil {
		return fmt.Errorf("write user store: %w", err)
	}
	return nil
}
