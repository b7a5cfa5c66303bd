package session

import (
	"context"
	"errors"
	"time"

	redisdb "github.com/freitasmatheusrn/supplier-sync/internal/database/redis"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type jsonCache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore keeps sessions as JSON documents that expire ttl after the last
// write.
type RedisStore struct {
	client jsonCache
	ttl    time.Duration
}

func NewRedisStore(client jsonCache, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return "session:" + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	if err := r.client.GetJSON(ctx, key(id), &s); err != nil {
		if errors.Is(err, redisdb.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	return r.client.SetJSON(ctx, key(s.ID), s, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, key(id))
}
