package rangemap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/db"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// Source resolves a locality to WKT geometries.
type Source interface {
	Geometries(ctx context.Context, loc domocc.Locality) ([]string, error)
}

// store is the consumer interface for the geometry cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cached caches resolved geometries in a key-value store.
type Cached struct {
	inner      Source
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewCached creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func NewCached(
	inner Source,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cached {
	return &Cached{
		inner:      inner,
		store:      s,
		prefix:     keyPrefix + "rangemap:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Geometries returns cached geometries or resolves them via the inner source.
// Cache failures never fail the lookup.
func (c *Cached) Geometries(ctx context.Context, loc domocc.Locality) ([]string, error) {
	key := c.cacheKey(loc)

	if wkts, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return wkts, nil
	}

	c.incCache("miss")

	wkts, err := c.inner.Geometries(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", loc, err)
	}

	c.putToCache(ctx, key, wkts)
	return wkts, nil
}

func (c *Cached) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cached) cacheKey(loc domocc.Locality) string {
	return c.prefix + strconv.Itoa(loc.Level) + ":" + loc.Code
}

func (c *Cached) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached geometries", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var wkts []string
	if err := json.Unmarshal(data, &wkts); err != nil {
		c.logger.Warn("Dropping unreadable cached geometries", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop cached geometries", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return wkts, true
}

func (c *Cached) putToCache(ctx context.Context, key string, wkts []string) {
	if wkts == nil {
		wkts = []string{}
	}
	data, err := json.Marshal(wkts)
	if err != nil {
		c.logger.Warn("Failed to encode geometries", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache geometries", zap.String("key", key), zap.Error(err))
	}
}
