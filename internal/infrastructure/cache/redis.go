package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/internal/domain/repositories"
	"github.com/harulab/interp-practice/pkg/config"
)

// NewRedisClient creates a Redis client and verifies connectivity
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisSessionStore keeps processing sessions in Redis so multiple API
// instances can serve status polls for the same job.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

// Create stores a new processing session
func (rs *RedisSessionStore) Create(ctx context.Context, session *entities.ProcessingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.ErrCacheFailed("marshal session", err)
	}

	if err := rs.client.Set(ctx, sessionKey(session.ID), data, rs.ttl).Err(); err != nil {
		return apperrors.ErrCacheFailed("set session", err)
	}
	return nil
}

// Update applies a partial update to an existing session.
// Read-modify-write is good enough here: only the owning job writes a
// session, readers just poll.
func (rs *RedisSessionStore) Update(ctx context.Context, id uuid.UUID, update repositories.SessionUpdate) error {
	session, err := rs.Get(ctx, id)
	if err != nil {
		return err
	}

	applyUpdate(session, update)

	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.ErrCacheFailed("marshal session", err)
	}

	if err := rs.client.Set(ctx, sessionKey(id), data, rs.ttl).Err(); err != nil {
		return apperrors.ErrCacheFailed("update session", err)
	}
	return nil
}

// Get returns a session by ID
func (rs *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error) {
	data, err := rs.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.ErrSessionNotFound(id.String())
	}
	if err != nil {
		return nil, apperrors.ErrCacheFailed("get session", err)
	}

	var session entities.ProcessingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.ErrCacheFailed("unmarshal session", err)
	}
	return &session, nil
}

// Delete removes a session
func (rs *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := rs.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return apperrors.ErrCacheFailed("delete session", err)
	}
	return nil
}
