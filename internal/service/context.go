package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"meterhub/internal/models"
	"meterhub/internal/redisstore"
)

// ContextLoader serves meter contexts to read paths outside the ingest
// transaction (HTTP reads, batch planning) with an optional redis
// read-through cache. Transactional code loads contexts through its own
// store instead, for read-your-writes consistency.
type ContextLoader struct {
	meters MeterStore
	cache  *redisstore.ContextStore
	logger *zap.Logger
}

// NewContextLoader builds loader. cache may be nil.
func NewContextLoader(meters MeterStore, cache *redisstore.ContextStore, logger *zap.Logger) *ContextLoader {
	return &ContextLoader{meters: meters, cache: cache, logger: logger}
}

// Load returns the meter context, from cache when possible.
func (l *ContextLoader) Load(ctx context.Context, meterCode string) (*models.MeterContext, error) {
	if l.cache != nil {
		cached, err := l.cache.Get(ctx, meterCode)
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			l.logger.Warn("meter context cache read failed", zap.String("meter", meterCode), zap.Error(err))
		}
	}

	mctx, err := l.meters.ContextByCode(ctx, meterCode)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Save(ctx, mctx); err != nil {
			l.logger.Warn("meter context cache write failed", zap.String("meter", meterCode), zap.Error(err))
		}
	}
	return mctx, nil
}

// Invalidate drops the cached context for a meter.
func (l *ContextLoader) Invalidate(ctx context.Context, meterCode string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, meterCode); err != nil && err != redis.Nil {
		l.logger.Warn("meter context cache invalidation failed", zap.String("meter", meterCode), zap.Error(err))
	}
}
