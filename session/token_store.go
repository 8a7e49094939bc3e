package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued JWTs in Redis so logout and user deletion can
// revoke them before expiry. Keys carry the token's remaining TTL, so revoked
// and issued entries clean themselves up.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore { return &TokenStore{rdb: rdb} }

func tokenKey(jti string) string    { return fmt.Sprintf("auth:token:%s", jti) }
func userSetKey(userID uint) string { return fmt.Sprintf("auth:user_tokens:%d", userID) }
func revokedKey(jti string) string  { return fmt.Sprintf("auth:revoked:%s", jti) }

// Track records a freshly issued token under its user so RevokeAllForUser can
// find it later.
func (s *TokenStore) Track(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(jti), userID, ttl)
	pipe.SAdd(ctx, userSetKey(userID), jti)
	pipe.Expire(ctx, userSetKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Revoke denylists one token until it would have expired anyway.
func (s *TokenStore) Revoke(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, revokedKey(jti), "1", ttl)
	pipe.Del(ctx, tokenKey(jti))
	pipe.SRem(ctx, userSetKey(userID), jti)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAllForUser denylists every tracked token of a user, e.g. when an admin
// deletes the account.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID uint, ttl time.Duration) error {
	jtis, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, jti := range jtis {
		pipe.Set(ctx, revokedKey(jti), "1", ttl)
		pipe.Del(ctx, tokenKey(jti))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
