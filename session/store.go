package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// GetOrCreate loads the session with id, starting a fresh one when the store
// has none.
func GetOrCreate(ctx context.Context, store Store, id string, now time.Time) (*Session, bool, error) {
	s, err := store.Get(ctx, id)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	return New(id, now), true, nil
}
