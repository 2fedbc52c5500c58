package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"meterhub/internal/models"
)

// ContextStore caches loaded meter contexts so read paths outside the ingest
// transaction skip the configuration joins. Writes to templates or meter
// configs invalidate the entry.
type ContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContextStore returns redis-backed store.
func NewContextStore(client *redis.Client, ttl time.Duration) *ContextStore {
	return &ContextStore{client: client, ttl: ttl}
}

func (s *ContextStore) key(meterCode string) string {
	return fmt.Sprintf("meters:context:%s", meterCode)
}

// Save caches a meter context.
func (s *ContextStore) Save(ctx context.Context, mctx *models.MeterContext) error {
	data, err := json.Marshal(mctx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(mctx.Meter.Code), data, s.ttl).Err()
}

// Get returns a cached meter context; redis.Nil when absent.
func (s *ContextStore) Get(ctx context.Context, meterCode string) (*models.MeterContext, error) {
	result, err := s.client.Get(ctx, s.key(meterCode)).Result()
	if err != nil {
		return nil, err
	}
	var mctx models.MeterContext
	if err := json.Unmarshal([]byte(result), &mctx); err != nil {
		return nil, err
	}
	return &mctx, nil
}

// Delete removes a cached meter context.
func (s *ContextStore) Delete(ctx context.Context, meterCode string) error {
	return s.client.Del(ctx, s.key(meterCode)).Err()
}
