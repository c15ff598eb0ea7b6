package cache

import (
	"time"

	"hybrid/config"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

const (
	commandSet    = "SET"
	commandPing   = "PING"
	commandExpire = "EX"
	commandNX     = "NX"
	replyPong     = "PONG"
)

type RedisStorage struct {
	cfg  config.RedisConf
	pool *redis.Pool
}

func NewRedisStorage(cfg config.RedisConf) (*RedisStorage, error) {
	pool := NewPool(cfg)
	conn, err := pool.Dial()
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis configuration url")
	}
	_ = conn.Close()

	return &RedisStorage{
		cfg:  cfg,
		pool: pool,
	}, nil
}

func (s *RedisStorage) CheckConn() error {
	conn := s.pool.Get()
	defer conn.Close()

	reply, err := redis.String(conn.Do(commandPing))
	if err != nil {
		return errors.Wrap(err, "connection failed")
	}

	if reply != replyPong {
		return errors.New("failed to receive ping response from redis")
	}

	return nil
}

func (s *RedisStorage) CloseConnection() error {
	return s.pool.Close()
}

func (s *RedisStorage) SetIfAbsent(bucket, key string, ttl time.Duration) (bool, error) {
	conn := s.pool.Get()
	defer conn.Close()

	_, err := redis.String(conn.Do(commandSet, s.key(bucket, key), 1, commandExpire, ttlSeconds(ttl), commandNX))
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to perform %s command", commandSet)
	}
	return true, nil
}

func (s *RedisStorage) key(bucket, key string) string {
	return s.cfg.KeyPrefix + bucket + ":" + key
}
