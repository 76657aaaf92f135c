package session

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process with an idle expiry.
type MemoryStore struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewMemoryStore expires sessions ttl after their last save. A ttl of zero
// keeps them until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	expiration := cache.NoExpiration
	var cleanup time.Duration
	if ttl > 0 {
		expiration = ttl
		cleanup = max(ttl/2, time.Minute)
	}
	return &MemoryStore{c: cache.New(expiration, cleanup), ttl: ttl}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	v, ok := m.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session without id")
	}
	m.c.Set(s.ID, s.Clone(), cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.c.Delete(id)
	return nil
}

// Len reports how many sessions are held, expired ones included until the
// next cleanup.
func (m *MemoryStore) Len() int {
	return m.c.ItemCount()
}

var _ Store = (*MemoryStore)(nil)
