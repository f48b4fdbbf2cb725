package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore stores sessions as JSON values under "<prefix>:<principal>".
// A positive ttl expires abandoned dialogues.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) Store {
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisStore) key(principal int64) string {
	return r.prefix + ":" + strconv.FormatInt(principal, 10)
}

func (r *redisStore) Get(ctx context.Context, principal int64) (Session, bool, error) {
	raw, err := r.client.Get(ctx, r.key(principal)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("session get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, false, fmt.Errorf("session decode: %w", err)
	}
	return s, true, nil
}

func (r *redisStore) Set(ctx context.Context, principal int64, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(principal), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (r *redisStore) Clear(ctx context.Context, principal int64) error {
	if err := r.client.Del(ctx, r.key(principal)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (r *redisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
