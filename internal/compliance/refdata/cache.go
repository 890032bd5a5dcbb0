package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyAll     = "sanctions:refdata:all"
	keyCountry = "sanctions:refdata:country:%s"
	keyPattern = "sanctions:refdata:*"
)

// CachedSource keeps JSON snapshots of the reference list in Redis. A cache
// failure never fails a read; the request falls through to the backing source.
type CachedSource struct {
	source screening.ReferenceSource
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ screening.ReferenceSource = (*CachedSource)(nil)

func NewCachedSource(source screening.ReferenceSource, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{source: source, client: client, ttl: ttl, logger: logger}
}

func (c *CachedSource) FetchAll(ctx context.Context) ([]screening.ReferenceRecord, error) {
	return c.cached(ctx, keyAll, func() ([]screening.ReferenceRecord, error) {
		return c.source.FetchAll(ctx)
	})
}

func (c *CachedSource) FetchByCountry(ctx context.Context, filter string) ([]screening.ReferenceRecord, error) {
	key := fmt.Sprintf(keyCountry, strings.ToLower(strings.TrimSpace(filter)))
	return c.cached(ctx, key, func() ([]screening.ReferenceRecord, error) {
		return c.source.FetchByCountry(ctx, filter)
	})
}

// Invalidate drops every snapshot, e.g. after the list was reseeded.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan reference snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete reference snapshots: %w", err)
	}
	c.logger.Info("reference snapshots invalidated", zap.Int("keys", len(keys)))
	return nil
}

func (c *CachedSource) cached(ctx context.Context, key string, load func() ([]screening.ReferenceRecord, error)) ([]screening.ReferenceRecord, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []screening.ReferenceRecord
		jerr := json.Unmarshal(data, &records)
		if jerr == nil {
			metrics.ReferenceCache.WithLabelValues("hit").Inc()
			return records, nil
		}
		c.logger.Warn("corrupt reference snapshot, reloading", zap.String("key", key), zap.Error(jerr))
		metrics.ReferenceCache.WithLabelValues("miss").Inc()
	case err == redis.Nil:
		metrics.ReferenceCache.WithLabelValues("miss").Inc()
	default:
		metrics.ReferenceCache.WithLabelValues("error").Inc()
		c.logger.Warn("reference cache unavailable, reading source", zap.String("key", key), zap.Error(err))
	}

	records, err := load()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to store reference snapshot", zap.String("key", key), zap.Error(err))
	}
	return records, nil
}
