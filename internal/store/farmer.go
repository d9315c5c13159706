package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agrunetcore/farmhub/types"
)

// FarmerRepository persists farmer records in a single flat JSON file.
// Writes are read-modify-write over the whole file with no locking, so the
// last writer wins; concurrent registrations can lose earlier writes.
type FarmerRepository struct {
	path string
}

func NewFarmerRepository(path string) *FarmerRepository {
	return &FarmerRepository{path: path}
}

// List returns every stored farmer. A missing backing file yields an empty
// list, not an error.
func (r *FarmerRepository) List(ctx context.Context) ([]types.Farmer, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Farmer{}, nil
		}
		return nil, fmt.Errorf("read farmer store: %w", err)
	}

	var farmers []types.Farmer
	if err := json.Unmarshal(data, &farmers); err != nil {
		return nil, fmt.Errorf("parse farmer store: %w", err)
	}
	if farmers == nil {
		farmers = []types.Farmer{}
	}
	return farmers, nil
}

// Append adds one farmer to the store, initializing an empty store on
// first write.
func (r *FarmerRepository) Append(ctx context.Context, farmer types.Farmer) error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read farmer store: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return fmt.Errorf("init farmer store: %w", err)
		}
		data = []byte("[]")
	}

	var farmers []types.Farmer
	if err := json.Unmarshal(data, &farmers); err != nil {
		return fmt.Errorf("parse farmer store: %w", err)
	}

	farmers = append(farmers, farmer)

	out, err := json.MarshalIndent(farmers, "", "  ")
	if err != nil {
		return fmt.Errorf("encode farmer store: %w", err)
	}
	if err := os.WriteFile(r.path, out, 0o644); err != nil {
		return fmt.Errorf("write farmer store: %w", err)
	}
	return nil
}
