package clinicctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps selections in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	v, ok := s.cache.Get(Key(userID))
	if !ok {
		return uuid.Nil, false, nil
	}
	return v.(uuid.UUID), true, nil
}

func (s *MemoryStore) Set(_ context.Context, userID, clinicID uuid.UUID) error {
	s.cache.SetDefault(Key(userID), clinicID)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.cache.Delete(Key(userID))
	return nil
}
