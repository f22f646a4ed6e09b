package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
)

var (
	// ErrCollectionNotFound signals that nothing has been persisted under the collection key yet.
	ErrCollectionNotFound = errors.New("alumni collection not found")
	// ErrCollectionCorrupt signals that the persisted collection could not be decoded.
	ErrCollectionCorrupt = errors.New("alumni collection corrupt")
)

// AlumniRepository serialises the whole alumni collection under a single key.
type AlumniRepository struct {
	store kvstore.Store
	key   string
}

// NewAlumniRepository constructs the repository; an empty key falls back to "alumniData".
func NewAlumniRepository(store kvstore.Store, key string) *AlumniRepository {
	if key == "" {
		key = "alumniData"
	}
	return &AlumniRepository{store: store, key: key}
}

// Load decodes the persisted collection verbatim.
func (r *AlumniRepository) Load(ctx context.Context) ([]models.Alumni, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}
	if !ok {
		return nil, ErrCollectionNotFound
	}
	var records []models.Alumni
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionCorrupt, err)
	}
	if records == nil {
		records = []models.Alumni{}
	}
	return records, nil
}

// Save replaces the persisted collection. Store errors stay matchable with errors.Is.
func (r *AlumniRepository) Save(ctx context.Context, records []models.Alumni) error {
	if records == nil {
		records = []models.Alumni{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}

// Clear removes the persisted collection to free space.
func (r *AlumniRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("remove %s: %w", r.key, err)
	}
	return nil
}
