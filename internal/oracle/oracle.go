package oracle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"alphapicks/internal/cache"
	"alphapicks/internal/client/pricefeed"
)

// Provider serves bounded-window historical price series.
type Provider interface {
	GetMarketChartRange(ctx context.Context, assetID string, from, to int64) ([]pricefeed.PricePoint, error)
}

type Config struct {
	// WindowSlack pads the provider query window on each side of the target.
	WindowSlack time.Duration
	// MaxSampleDistance bounds how far the nearest sample may sit from the
	// target before the lookup counts as not-found.
	MaxSampleDistance time.Duration
	// CacheTTL applies to resolution lookups. Historical prices never change,
	// so this is long.
	CacheTTL time.Duration
	// PreviewCacheTTL applies to preview lookups, which target near-now
	// timestamps and go stale quickly.
	PreviewCacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.WindowSlack <= 0 {
		c.WindowSlack = time.Hour
	}
	if c.MaxSampleDistance <= 0 {
		c.MaxSampleDistance = 2 * time.Hour
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 30 * 24 * time.Hour
	}
	if c.PreviewCacheTTL <= 0 {
		c.PreviewCacheTTL = 5 * time.Minute
	}
	return c
}

// Oracle answers "what did this asset cost at this instant" with a cache in
// front of the provider. Lookups never fail hard: any provider problem is a
// not-found for that pair.
type Oracle struct {
	provider Provider
	cache    cache.Cache
	logger   *zap.Logger
	cfg      Config
}

func New(provider Provider, cacheStore cache.Cache, logger *zap.Logger, cfg Config) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		provider: provider,
		cache:    cacheStore,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// GetPrice returns the asset price nearest to target (unix seconds), or
// ok=false when no acceptable sample exists.
func (o *Oracle) GetPrice(ctx context.Context, assetID string, target int64) (float64, bool) {
	return o.lookup(ctx, assetID, target, "price", o.cfg.CacheTTL)
}

// GetPreviewPrice is GetPrice against the short-lived preview keyspace.
func (o *Oracle) GetPreviewPrice(ctx context.Context, assetID string, target int64) (float64, bool) {
	return o.lookup(ctx, assetID, target, "preview", o.cfg.PreviewCacheTTL)
}

func (o *Oracle) lookup(ctx context.Context, assetID string, target int64, keyspace string, ttl time.Duration) (float64, bool) {
	key := fmt.Sprintf("%s:%s:%d", keyspace, assetID, target)
	if raw, ok, err := o.cache.Get(ctx, key); err == nil && ok {
		if price, perr := strconv.ParseFloat(string(raw), 64); perr == nil {
			return price, true
		}
	} else if err != nil {
		o.logger.Warn("price cache read failed", zap.String("key", key), zap.Error(err))
	}

	slack := int64(o.cfg.WindowSlack / time.Second)
	points, err := o.provider.GetMarketChartRange(ctx, assetID, target-slack, target+slack)
	if err != nil {
		o.logger.Warn("price series fetch failed",
			zap.String("asset", assetID),
			zap.Int64("target", target),
			zap.Error(err),
		)
		return 0, false
	}
	if len(points) == 0 {
		return 0, false
	}

	targetMS := target * 1000
	best := points[0]
	bestDiff := absInt64(best.TimestampMS - targetMS)
	for _, p := range points[1:] {
		if diff := absInt64(p.TimestampMS - targetMS); diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	if bestDiff > o.cfg.MaxSampleDistance.Milliseconds() {
		o.logger.Warn("nearest price sample too far from target",
			zap.String("asset", assetID),
			zap.Int64("target", target),
			zap.Int64("distance_ms", bestDiff),
		)
		return 0, false
	}

	encoded := strconv.FormatFloat(best.Price, 'g', -1, 64)
	if err := o.cache.Set(ctx, key, []byte(encoded), ttl); err != nil {
		o.logger.Warn("price cache write failed", zap.String("key", key), zap.Error(err))
	}
	return best.Price, true
}

// PriceQuery addresses one (asset, timestamp) lookup in a batch.
type PriceQuery struct {
	Asset     string
	Timestamp int64
}

type PriceResult struct {
	Price float64
	OK    bool
}

// GetPrices resolves every query concurrently and independently; one pair
// failing never blocks or fails another.
func (o *Oracle) GetPrices(ctx context.Context, queries []PriceQuery) map[PriceQuery]PriceResult {
	results := make(map[PriceQuery]PriceResult, len(queries))
	if len(queries) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := make(map[PriceQuery]struct{}, len(queries))
	for _, q := range queries {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		wg.Add(1)
		go func(q PriceQuery) {
			defer wg.Done()
			price, ok := o.GetPrice(ctx, q.Asset, q.Timestamp)
			mu.Lock()
			results[q] = PriceResult{Price: price, OK: ok}
			mu.Unlock()
		}(q)
	}
	wg.Wait()
	return results
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
