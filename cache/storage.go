// Package cache remembers the signatures of accepted tokens for the replay
// window. Backends are selected by config.ReplayCfg.
package cache

import (
	"strconv"
	"time"

	"hybrid/config"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

const (
	ReplayBucket = "replay"
)

type Storage interface {
	CheckConn() error
	CloseConnection() error
	// SetIfAbsent stores key in bucket for ttl and reports whether it was
	// stored. false means the key was already present and not expired.
	SetIfAbsent(bucket, key string, ttl time.Duration) (bool, error)
}

func NewStorage(cfg config.ReplayCfg) (Storage, error) {
	if !cfg.Enable {
		return new(storageStub), nil
	}

	switch cfg.Type {
	case config.StorageTypeNutsDB:
		nutsdb, err := NewNutsDBStorage(cfg.NutsDB)
		if err != nil {
			return nil, errors.Wrap(err, "nutsdb init storage err")
		}
		return nutsdb, nil
	case config.StorageTypeRedis:
		redis, err := NewRedisStorage(cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "redis init storage err")
		}
		return redis, nil
	default:
		return NewMemoryStorage(cfg.Memory.Size), nil
	}
}

// ReplayGuard reports signatures that were already accepted inside the
// window. It satisfies token.ReplayGuard.
type ReplayGuard struct {
	storage Storage
	bucket  string
}

func NewReplayGuard(storage Storage) *ReplayGuard {
	return &ReplayGuard{storage: storage, bucket: ReplayBucket}
}

func (g *ReplayGuard) Seen(signature string, ttl time.Duration) (bool, error) {
	stored, err := g.storage.SetIfAbsent(g.bucket, replayKey(signature), ttl)
	if err != nil {
		return false, errors.Wrap(err, "unable to record signature")
	}
	return !stored, nil
}

func replayKey(signature string) string {
	return strconv.FormatUint(xxhash.Sum64String(signature), 16)
}

func ttlSeconds(ttl time.Duration) int64 {
	sec := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		sec++
	}
	if sec < 1 {
		sec = 1
	}
	return sec
}

type storageStub struct{}

func (s *storageStub) CheckConn() error { return nil }

func (s *storageStub) CloseConnection() error { return nil }

func (s *storageStub) SetIfAbsent(string, string, time.Duration) (bool, error) { return true, nil }
