package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
)

const (
	DefaultKeyPrefix = "captionflow:job:"

	ambiguousOwner = "*"
)

// RedisStore keeps one JSON document per job plus an owner index from job
// id to provider name. Keys expire after ttl.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore parses a redis:// or rediss:// URL.
func NewRedisStore(rawURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, &apperrors.ConfigurationError{Key: "REDIS_URL", Reason: err.Error()}
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), ttl), nil
}

func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: DefaultKeyPrefix, ttl: ttl}
}

func (s *RedisStore) jobKey(providerName, id string) string {
	return s.prefix + providerName + "/" + id
}

func (s *RedisStore) ownerKey(id string) string {
	return s.prefix + "owner:" + id
}

// Ping checks the connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(err, "redis ping")
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, job provider.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	ownerKey := s.ownerKey(job.ID)
	owner, err := s.client.Get(ctx, ownerKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read job owner: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.jobKey(job.Provider, job.ID), data, s.ttl)
		switch owner {
		case "", job.Provider:
			pipe.Set(ctx, ownerKey, job.Provider, s.ttl)
		default:
			// two providers issued the same id; the owner is ambiguous
			pipe.Set(ctx, ownerKey, ambiguousOwner, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, providerName, id string) (*provider.Job, error) {
	data, err := s.client.Get(ctx, s.jobKey(providerName, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	var job provider.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

func (s *RedisStore) Owner(ctx context.Context, id string) (string, error) {
	owner, err := s.client.Get(ctx, s.ownerKey(id)).Result()
	if errors.Is(err, redis.Nil) || owner == ambiguousOwner {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load job owner: %w", err)
	}
	return owner, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
