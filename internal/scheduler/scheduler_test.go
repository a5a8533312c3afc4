package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yava-code/weatherAI/internal/weather"
)

// fakeService fails for the cities listed in failFor and succeeds for
// the rest, counting every call.
type fakeService struct {
	mu           sync.Mutex
	failFor      map[string]bool
	analyzed     []string
	retrained    []string
	globalTrains int
}

func (s *fakeService) Analyze(ctx context.Context, city string) (*weather.IntelBundle, error) {
	s.mu.Lock()
	s.analyzed = append(s.analyzed, city)
	s.mu.Unlock()

	if s.failFor[city] {
		return nil, weather.ErrWeatherUnavailable
	}
	return &weather.IntelBundle{
		City:    city,
		Current: weather.Observation{Timestamp: time.Now(), Temperature: 10, Humidity: 60, WindSpeed: 3},
	}, nil
}

func (s *fakeService) RetrainCity(ctx context.Context, city string) error {
	s.mu.Lock()
	s.retrained = append(s.retrained, city)
	s.mu.Unlock()

	if s.failFor[city] {
		return weather.ErrInsufficientData
	}
	return nil
}

func (s *fakeService) TrainGlobal(ctx context.Context) error {
	s.mu.Lock()
	s.globalTrains++
	s.mu.Unlock()
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	sets map[string]*weather.IntelBundle
}

func newFakeCache() *fakeCache {
	return &fakeCache{sets: make(map[string]*weather.IntelBundle)}
}

func (c *fakeCache) Set(city string, b *weather.IntelBundle, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[city] = b
}

func (c *fakeCache) Get(city string) (*weather.IntelBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.sets[city]
	return b, ok
}

type fakeSink struct {
	mu       sync.Mutex
	inserted []weather.Measurement
	err      error
}

func (s *fakeSink) Insert(ctx context.Context, m weather.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, m)
	return nil
}

func testConfig(roster []string) Config {
	return Config{
		RefreshRoster:   roster,
		RetrainRoster:   roster,
		RefreshInterval: time.Hour,
		RetrainInterval: time.Hour,
		GlobalTrainAt:   "00:00",
		CacheTTL:        time.Hour,
		JobTimeout:      5 * time.Second,
	}
}

func TestRefreshAndCacheIsolatesFailures(t *testing.T) {
	roster := []string{"Warsaw", "Berlin", "London"}
	svc := &fakeService{failFor: map[string]bool{"Berlin": true}}
	cache := newFakeCache()
	sink := &fakeSink{}

	m := New(svc, cache, sink, testConfig(roster))
	m.RefreshAndCache()

	if len(svc.analyzed) != 3 {
		t.Fatalf("expected all 3 cities analyzed despite failure, got %d", len(svc.analyzed))
	}
	if len(cache.sets) != 2 {
		t.Errorf("expected 2 cached bundles, got %d", len(cache.sets))
	}
	if _, ok := cache.Get("Berlin"); ok {
		t.Error("failed city must not be cached")
	}
	if len(sink.inserted) != 2 {
		t.Errorf("expected 2 persisted snapshots, got %d", len(sink.inserted))
	}
}

func TestRefreshAndCacheSurvivesSinkErrors(t *testing.T) {
	roster := []string{"Warsaw"}
	svc := &fakeService{}
	cache := newFakeCache()
	sink := &fakeSink{err: errors.New("disk full")}

	m := New(svc, cache, sink, testConfig(roster))
	m.RefreshAndCache()

	// The bundle is still cached even when persistence fails.
	if _, ok := cache.Get("Warsaw"); !ok {
		t.Error("expected bundle cached despite sink error")
	}
}

func TestWarmRetrainIsolatesFailures(t *testing.T) {
	roster := []string{"Warsaw", "Berlin", "London", "Paris"}
	svc := &fakeService{failFor: map[string]bool{"London": true}}

	m := New(svc, newFakeCache(), &fakeSink{}, testConfig(roster))
	m.WarmRetrain()

	if len(svc.retrained) != 4 {
		t.Fatalf("expected all 4 cities retrained despite failure, got %d", len(svc.retrained))
	}
}

func TestGlobalRetrain(t *testing.T) {
	svc := &fakeService{}
	m := New(svc, newFakeCache(), &fakeSink{}, testConfig(nil))
	m.GlobalRetrain()

	if svc.globalTrains != 1 {
		t.Fatalf("expected 1 global training run, got %d", svc.globalTrains)
	}
}
