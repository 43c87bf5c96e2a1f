package otpcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
)

const keyPrefix = "delivery:otp:"

// ErrDisabled is returned when no redis is configured and a code must be stored.
var ErrDisabled = fmt.Errorf("otp cache is not configured: %w", domainErrors.ErrUnavailable)

// commander is the subset of *redis.Client used by Store.
type commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store keeps OTP hashes in redis with a TTL.
type Store struct {
	rdb commander
}

// NewStore wraps a redis client.
func NewStore(rdb commander) *Store {
	return &Store{rdb: rdb}
}

// Dial parses redisURL and verifies connectivity.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

// Save stores hash for orderID, replacing any previous code.
func (s *Store) Save(ctx context.Context, orderID, hash string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyPrefix+orderID, hash, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// Get returns the stored hash or ErrNotFound when absent or expired.
func (s *Store) Get(ctx context.Context, orderID string) (string, error) {
	hash, err := s.rdb.Get(ctx, keyPrefix+orderID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domainErrors.ErrNotFound
		}
		return "", fmt.Errorf("get otp: %w", err)
	}
	return hash, nil
}

// Delete removes the code for orderID.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// Disabled stands in when REDIS_URL is empty: nothing is ever stored.
type Disabled struct{}

func (Disabled) Save(context.Context, string, string, time.Duration) error { return ErrDisabled }

func (Disabled) Get(context.Context, string) (string, error) { return "", domainErrors.ErrNotFound }

func (Disabled) Delete(context.Context, string) error { return nil }
