package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rewired-gh/slatewatch/internal/models"
)

type entry struct {
	value string
	ttl   time.Duration
}

// memStore is an in-process Store. failing makes every command return err.
type memStore struct {
	mu      sync.Mutex
	data    map[string]entry
	failing error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]entry{}}
}

func (m *memStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return redis.NewStringResult("", m.failing)
	}
	e, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(e.value, nil)
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return redis.NewStatusResult("", m.failing)
	}
	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	}
	m.data[key] = entry{value: s, ttl: expiration}
	return redis.NewStatusResult("OK", nil)
}

type countingFetcher struct {
	calls int
	stats *models.GameStats
	err   error
}

func (f *countingFetcher) FetchGameStats(ctx context.Context, gameID string) (*models.GameStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	gs := *f.stats
	gs.GameID = gameID
	return &gs, nil
}

func liveStats() *models.GameStats {
	return &models.GameStats{
		Teams:  models.TeamStats{Home: models.TeamCounters{RushingTDs: 1, TotalTDs: 1}},
		Status: models.StatsStatus{State: "in"},
	}
}

func TestFetchGameStats_MissThenHit(t *testing.T) {
	store := newMemStore()
	next := &countingFetcher{stats: liveStats()}
	c := NewRedisCache(store, next, 0, 0)

	first, err := c.FetchGameStats(context.Background(), "401")
	if err != nil {
		t.Fatalf("FetchGameStats: %v", err)
	}
	second, err := c.FetchGameStats(context.Background(), "401")
	if err != nil {
		t.Fatalf("FetchGameStats: %v", err)
	}

	if next.calls != 1 {
		t.Errorf("upstream called %d times, want 1", next.calls)
	}
	if second.Teams.Home.RushingTDs != first.Teams.Home.RushingTDs || second.GameID != "401" {
		t.Errorf("cached stats differ: %+v", second)
	}
	if e := store.data["game:401:stats"]; e.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", e.ttl, DefaultTTL)
	}
}

func TestFetchGameStats_FinalGameTTL(t *testing.T) {
	store := newMemStore()
	final := liveStats()
	final.Status = models.StatsStatus{State: "post", Completed: true}
	c := NewRedisCache(store, &countingFetcher{stats: final}, 5*time.Second, time.Hour)

	if _, err := c.FetchGameStats(context.Background(), "402"); err != nil {
		t.Fatalf("FetchGameStats: %v", err)
	}
	if e := store.data["game:402:stats"]; e.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", e.ttl)
	}
}

func TestFetchGameStats_RedisDownFallsThrough(t *testing.T) {
	store := newMemStore()
	store.failing = errors.New("connection refused")
	next := &countingFetcher{stats: liveStats()}
	c := NewRedisCache(store, next, 0, 0)

	for i := 0; i < 2; i++ {
		if _, err := c.FetchGameStats(context.Background(), "403"); err != nil {
			t.Fatalf("FetchGameStats: %v", err)
		}
	}
	if next.calls != 2 {
		t.Errorf("upstream called %d times, want 2", next.calls)
	}
}

func TestFetchGameStats_CorruptEntry(t *testing.T) {
	store := newMemStore()
	store.data["game:404:stats"] = entry{value: "{not json"}
	next := &countingFetcher{stats: liveStats()}
	c := NewRedisCache(store, next, 0, 0)

	gs, err := c.FetchGameStats(context.Background(), "404")
	if err != nil {
		t.Fatalf("FetchGameStats: %v", err)
	}
	if next.calls != 1 || gs.GameID != "404" {
		t.Errorf("corrupt entry should be refetched, calls=%d", next.calls)
	}
	var stored models.GameStats
	if err := json.Unmarshal([]byte(store.data["game:404:stats"].value), &stored); err != nil {
		t.Errorf("entry not rewritten: %v", err)
	}
}

func TestFetchGameStats_UpstreamError(t *testing.T) {
	store := newMemStore()
	c := NewRedisCache(store, &countingFetcher{err: errors.New("502")}, 0, 0)

	if _, err := c.FetchGameStats(context.Background(), "405"); err == nil {
		t.Fatal("expected upstream error")
	}
	if len(store.data) != 0 {
		t.Error("failed fetches should not be cached")
	}
}
