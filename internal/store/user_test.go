package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agrunetcore/farmhub/types"
)

func newTestUser(id, email string) types.User {
	return types.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		Role:         types.RoleUser,
		PasswordHash: "hash-" + id,
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	created, err := repo.Create(ctx, newTestUser("u-1", "abdi@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "u-1" {
		t.Fatalf("unexpected created user: %+v", created)
	}

	byID, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.PasswordHash != "hash-u-1" {
		t.Fatalf("expected password hash to round-trip, got %q", byID.PasswordHash)
	}

	// Email lookup is case-insensitive.
	byEmail, err := repo.GetByEmail(ctx, "ABDI@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	if _, err := repo.Create(ctx, newTestUser("u-1", "abdi@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, newTestUser("u-2", "Abdi@Example.com"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	if _, err := repo.Create(ctx, newTestUser("u-1", "abdi@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	user := newTestUser("u-1", "abdi@example.com")
	user.Avatar = "/avatars/u-1.png"
	if _, err := repo.Update(ctx, user); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if stored.Avatar != "/avatars/u-1.png" {
		t.Fatalf("expected avatar update persisted, got %q", stored.Avatar)
	}

	_, err = repo.Update(ctx, newTestUser("missing", "x@example.com"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestUserLookupMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserFilePasswordHashHiddenFromAPIShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)

	if _, err := repo.Create(ctx, newTestUser("u-1", "abdi@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The file keeps the hash under its own key; marshaling the User type
	// itself must never leak it.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if raw[0]["passwordHash"] != "hash-u-1" {
		t.Fatalf("expected hash persisted in file, got %v", raw[0])
	}

	user, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	out, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	var api map[string]any
	if err := json.Unmarshal(out, &api); err != nil {
		t.Fatalf("parse marshaled user: %v", err)
	}
	if _, leaked := api["passwordHash"]; leaked {
		t.Fatalf("password hash leaked into API shape: %s", out)
	}
}
