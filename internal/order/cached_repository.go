package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"smarthome-be/internal/cache"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/metrics"

	"go.uber.org/zap"
)

// CachedRepository serves number lookups from a cache in front of another
// Repository. Orders never change once numbered, so entries need no
// invalidation beyond their TTL.
type CachedRepository struct {
	next    Repository
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Registry
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, cache: c, ttl: ttl, metrics: metrics.Default}
}

func cacheKey(number string) string {
	return "order:" + number
}

func (r *CachedRepository) CreateOrder(ctx context.Context, o *Order, numberFor func(int64) string) error {
	if err := r.next.CreateOrder(ctx, o, numberFor); err != nil {
		return err
	}
	r.store(ctx, o)
	return nil
}

func (r *CachedRepository) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "cache"), zap.String("number", number))

	raw, err := r.cache.Get(ctx, cacheKey(number))
	if err == nil {
		var o Order
		if err := json.Unmarshal(raw, &o); err == nil {
			r.metrics.Counter(metrics.OrderCacheHits).Inc()
			return &o, nil
		}
		log.Warn("discarding unreadable cached order")
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Warn("order cache unavailable", zap.Error(err))
	}

	r.metrics.Counter(metrics.OrderCacheMisses).Inc()
	o, err := r.next.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	r.store(ctx, o)
	return o, nil
}

func (r *CachedRepository) ListOrders(ctx context.Context, limit int) ([]*Order, error) {
	return r.next.ListOrders(ctx, limit)
}

func (r *CachedRepository) store(ctx context.Context, o *Order) {
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(o.Number), raw, r.ttl); err != nil {
		logger.FromCtx(ctx).Warn("failed to cache order", zap.String("number", o.Number), zap.Error(err))
	}
}
