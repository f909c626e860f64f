package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
)

const keyPrefix = "gopherchat:"

// Store keeps browser tokens in Redis so they survive restarts and are shared
// by every web instance.
type Store struct {
	rdb *redis.Client
}

var _ auth.Store = (*Store)(nil)

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrNoToken
		}
		return "", err
	}
	return v, nil
}

// Put stores the token; ttl <= 0 means no expiry.
func (s *Store) Put(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, keyPrefix+key, token, ttl).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
