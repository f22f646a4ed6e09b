package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
)

// ErrSessionNotFound signals that no identity is signed in.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores the current signed-in identity under a single key.
type SessionRepository struct {
	store kvstore.Store
	key   string
}

// NewSessionRepository constructs the repository; an empty key falls back to "currentUser".
func NewSessionRepository(store kvstore.Store, key string) *SessionRepository {
	if key == "" {
		key = "currentUser"
	}
	return &SessionRepository{store: store, key: key}
}

// Save stores the session.
func (r *SessionRepository) Save(ctx context.Context, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(payload)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load returns the stored session. Undecodable data is reported as ErrSessionNotFound.
func (r *SessionRepository) Load(ctx context.Context) (*models.Session, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.Role == "" {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Clear signs the identity out.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
