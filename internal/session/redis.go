package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps each session as a JSON value that Redis expires on its own.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Create(ctx context.Context, accountID uuid.UUID, name string, isAdmin bool) (*Record, error) {
	rec, err := newRecord(accountID, name, isAdmin, s.now().UTC())
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, keyPrefix+hashToken(rec.Token), raw, TTL).Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	raw, err := s.client.Get(ctx, keyPrefix+hashToken(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, ErrNotFound
	}
	rec.Token = token
	return &rec, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+hashToken(token)).Err()
}
