package cache

import (
	"sync"
	"time"

	"hybrid/config"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
)

// MemoryStorage keeps keys in a bounded in-process cache. Live keys are
// never evicted: when every slot holds an unexpired key, new keys are
// refused with ErrStorageFull.
type MemoryStorage struct {
	mu    sync.Mutex
	size  int
	cache gcache.Cache
}

var ErrStorageFull = errors.New("cache: memory storage is full of live keys")

func NewMemoryStorage(size int) *MemoryStorage {
	if size <= 0 {
		size = config.DefaultMemorySize
	}
	return &MemoryStorage{
		size:  size,
		cache: gcache.New(size).LRU().Build(),
	}
}

func (s *MemoryStorage) CheckConn() error { return nil }

func (s *MemoryStorage) CloseConnection() error {
	s.cache.Purge()
	return nil
}

func (s *MemoryStorage) SetIfAbsent(bucket, key string, ttl time.Duration) (bool, error) {
	k := bucket + "/" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.Has(k) {
		return false, nil
	}
	if s.cache.Len(false) >= s.size {
		s.dropExpired()
		if s.cache.Len(false) >= s.size {
			return false, ErrStorageFull
		}
	}
	if err := s.cache.SetWithExpire(k, struct{}{}, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStorage) dropExpired() {
	for _, k := range s.cache.Keys(false) {
		if !s.cache.Has(k) {
			s.cache.Remove(k)
		}
	}
}
