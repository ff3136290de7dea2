package oracle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alphapicks/internal/cache"
	"alphapicks/internal/client/pricefeed"
)

type fakeProvider struct {
	mu     sync.Mutex
	calls  int
	points map[string][]pricefeed.PricePoint
	err    error
}

func (p *fakeProvider) GetMarketChartRange(_ context.Context, assetID string, _, _ int64) ([]pricefeed.PricePoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.points[assetID], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

const targetTS = int64(1_700_000_000)

func TestGetPrice_PicksNearestSample(t *testing.T) {
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin": {
			{TimestampMS: (targetTS - 1800) * 1000, Price: 100},
			{TimestampMS: (targetTS - 60) * 1000, Price: 101},
			{TimestampMS: (targetTS + 600) * 1000, Price: 102},
		},
	}}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	price, ok := o.GetPrice(context.Background(), "bitcoin", targetTS)
	if !ok || price != 101 {
		t.Fatalf("got (%v, %v), want (101, true)", price, ok)
	}
}

func TestGetPrice_ExactTimestampWins(t *testing.T) {
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin": {
			{TimestampMS: (targetTS - 1) * 1000, Price: 99},
			{TimestampMS: targetTS * 1000, Price: 100},
			{TimestampMS: (targetTS + 1) * 1000, Price: 101},
		},
	}}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	price, ok := o.GetPrice(context.Background(), "bitcoin", targetTS)
	if !ok || price != 100 {
		t.Fatalf("got (%v, %v), want (100, true)", price, ok)
	}
}

func TestGetPrice_NearestTooFar(t *testing.T) {
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin": {
			{TimestampMS: (targetTS - 3*3600) * 1000, Price: 100},
		},
	}}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	if _, ok := o.GetPrice(context.Background(), "bitcoin", targetTS); ok {
		t.Fatalf("sample three hours out accepted with a two hour bound")
	}
}

func TestGetPrice_ServesSecondCallFromCache(t *testing.T) {
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin": {{TimestampMS: targetTS * 1000, Price: 123.45}},
	}}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	if _, ok := o.GetPrice(context.Background(), "bitcoin", targetTS); !ok {
		t.Fatalf("first lookup missed")
	}
	price, ok := o.GetPrice(context.Background(), "bitcoin", targetTS)
	if !ok || price != 123.45 {
		t.Fatalf("second lookup got (%v, %v)", price, ok)
	}
	if provider.callCount() != 1 {
		t.Fatalf("provider called %d times, want 1", provider.callCount())
	}
}

func TestGetPrice_FailuresNotCached(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	if _, ok := o.GetPrice(context.Background(), "bitcoin", targetTS); ok {
		t.Fatalf("failed fetch reported ok")
	}

	provider.mu.Lock()
	provider.err = nil
	provider.points = map[string][]pricefeed.PricePoint{
		"bitcoin": {{TimestampMS: targetTS * 1000, Price: 77}},
	}
	provider.mu.Unlock()

	price, ok := o.GetPrice(context.Background(), "bitcoin", targetTS)
	if !ok || price != 77 {
		t.Fatalf("retry after recovery got (%v, %v), want (77, true)", price, ok)
	}
	if provider.callCount() != 2 {
		t.Fatalf("provider called %d times, want 2", provider.callCount())
	}
}

func TestGetPreviewPrice_SeparateKeyspace(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin": {{TimestampMS: targetTS * 1000, Price: 55}},
	}}
	o := New(provider, store, nil, Config{})

	if _, ok := o.GetPreviewPrice(context.Background(), "bitcoin", targetTS); !ok {
		t.Fatalf("preview lookup missed")
	}
	// A resolution lookup for the same pair must not ride the preview entry.
	if _, ok := o.GetPrice(context.Background(), "bitcoin", targetTS); !ok {
		t.Fatalf("resolution lookup missed")
	}
	if provider.callCount() != 2 {
		t.Fatalf("provider called %d times, want 2", provider.callCount())
	}
}

func TestGetPrices_IndependentResults(t *testing.T) {
	provider := &fakeProvider{points: map[string][]pricefeed.PricePoint{
		"bitcoin":  {{TimestampMS: targetTS * 1000, Price: 100}},
		"dogecoin": {{TimestampMS: (targetTS - 5*3600) * 1000, Price: 0.1}},
	}}
	o := New(provider, cache.NewMemoryStore(), nil, Config{})

	results := o.GetPrices(context.Background(), []PriceQuery{
		{Asset: "bitcoin", Timestamp: targetTS},
		{Asset: "dogecoin", Timestamp: targetTS},
		{Asset: "bitcoin", Timestamp: targetTS},
	})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 after dedup", len(results))
	}
	btc := results[PriceQuery{Asset: "bitcoin", Timestamp: targetTS}]
	if !btc.OK || btc.Price != 100 {
		t.Fatalf("bitcoin result %+v", btc)
	}
	if doge := results[PriceQuery{Asset: "dogecoin", Timestamp: targetTS}]; doge.OK {
		t.Fatalf("dogecoin sample five hours out reported ok")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.WindowSlack != time.Hour || cfg.MaxSampleDistance != 2*time.Hour {
		t.Fatalf("window defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 30*24*time.Hour || cfg.PreviewCacheTTL != 5*time.Minute {
		t.Fatalf("ttl defaults: %+v", cfg)
	}
}
