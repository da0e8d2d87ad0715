package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// RevocationStore records revoked token ids until their expiry.
// repository.TokenRepo is the MySQL implementation.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, userID uint64, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationStore keeps one key per revoked jti.  The key expires
// together with the token, so no cleanup loop is needed.
type RedisRevocationStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocationStore returns a store writing keys "<prefix>:<jti>".
func NewRedisRevocationStore(rdb *redis.Client, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RedisRevocationStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisRevocationStore) key(jti string) string { return s.prefix + ":" + jti }

// Revoke stores jti with a TTL equal to the token's remaining lifetime.
// An already expired token needs no entry.
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, userID uint64, exp time.Time) error {
	ttl := exp.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.key(jti), strconv.FormatUint(userID, 10), ttl).Err()
}

// IsRevoked reports whether a key exists for jti.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.rdb.Get(ctx, s.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CachedRevocationStore remembers revoked ids in process so repeated
// requests with a logged-out token skip the backing store.  Only positive
// answers are cached: a revocation never becomes undone.
type CachedRevocationStore struct {
	next  RevocationStore
	cache *lru.LRU[string, struct{}]
}

// NewCachedRevocationStore wraps next with an LRU of size entries, each
// kept for at most ttl.
func NewCachedRevocationStore(next RevocationStore, size int, ttl time.Duration) *CachedRevocationStore {
	if size <= 0 {
		size = 1024
	}
	return &CachedRevocationStore{next: next, cache: lru.NewLRU[string, struct{}](size, nil, ttl)}
}

func (s *CachedRevocationStore) Revoke(ctx context.Context, jti string, userID uint64, exp time.Time) error {
	if err := s.next.Revoke(ctx, jti, userID, exp); err != nil {
		return err
	}
	s.cache.Add(jti, struct{}{})
	return nil
}

func (s *CachedRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if _, ok := s.cache.Get(jti); ok {
		return true, nil
	}
	revoked, err := s.next.IsRevoked(ctx, jti)
	if err == nil && revoked {
		s.cache.Add(jti, struct{}{})
	}
	return revoked, err
}
