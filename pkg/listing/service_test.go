package listing

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/product-listing-service/models"
)

// fakeStore serves a fixture, applying the plan's pagination args and, for
// the price ordering the scenarios use, its sort. Predicate filtering is
// approximated through a preset result set per test.
type fakeStore struct {
	products   []models.Product
	total      int
	countCalls int
	queryCalls int
	err        error
}

func (s *fakeStore) CountProducts(ctx context.Context, plan QueryPlan) (int, error) {
	s.countCalls++
	if s.err != nil {
		return 0, s.err
	}
	return s.total, nil
}

func (s *fakeStore) QueryProducts(ctx context.Context, plan QueryPlan) ([]models.Product, error) {
	s.queryCalls++
	if s.err != nil {
		return nil, s.err
	}

	rows := make([]models.Product, len(s.products))
	copy(rows, s.products)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })

	// The last two data args are always LIMIT and OFFSET.
	limit := plan.DataArgs[len(plan.DataArgs)-2].(int)
	offset := plan.DataArgs[len(plan.DataArgs)-1].(int)
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

// fakeCache is an in-memory stand-in for the Redis client with the same
// degraded-to-miss semantics.
type fakeCache struct {
	available bool
	timingOut bool
	entries   map[string][]byte
	getCalls  int
	setCalls  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{available: true, entries: map[string][]byte{}}
}

func (c *fakeCache) Available() bool { return c.available }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.getCalls++
	if c.timingOut {
		return nil, false
	}
	payload, ok := c.entries[key]
	return payload, ok
}

func (c *fakeCache) SetAsync(key string, payload []byte) {
	c.setCalls++
	if c.timingOut {
		return
	}
	c.entries[key] = payload
}

func electronicsFixture() []models.Product {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, Name: "Speaker", Price: 30, Category: "electronics", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Cable", Price: 10, Category: "electronics", CreatedAt: now, UpdatedAt: now},
		{ID: 3, Name: "Mouse", Price: 20, Category: "electronics", CreatedAt: now, UpdatedAt: now},
	}
}

func TestList_FilteredSortedPage(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	svc := NewService(store, newFakeCache(), NewPlanner(false))

	page, meta, err := svc.List(context.Background(), map[string]string{
		"page":       "1",
		"limit":      "2",
		"sort_by":    "price",
		"sort_order": "asc",
		"category":   "electronics",
	})
	require.NoError(t, err)

	assert.Equal(t, CacheMiss, meta.CacheStatus)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Data, 2)
	assert.Equal(t, float64(10), page.Data[0].Price)
	assert.Equal(t, float64(20), page.Data[1].Price)
}

func TestList_HitServesCachedEnvelopeWithoutStoreAccess(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	cache := newFakeCache()
	svc := NewService(store, cache, NewPlanner(false))

	params := map[string]string{"page": "1", "limit": "2", "sort_by": "price", "category": "electronics"}

	first, meta, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, CacheMiss, meta.CacheStatus)
	require.Equal(t, 1, cache.setCalls)

	second, meta, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, CacheHit, meta.CacheStatus)

	// One count and one data query total: the second request never reached
	// the store.
	assert.Equal(t, 1, store.countCalls)
	assert.Equal(t, 1, store.queryCalls)

	assert.Equal(t, first.TotalCount, second.TotalCount)
	require.Len(t, second.Data, len(first.Data))
	for i := range first.Data {
		assert.Equal(t, first.Data[i].ID, second.Data[i].ID)
		assert.True(t, first.Data[i].CreatedAt.Equal(second.Data[i].CreatedAt))
	}
}

func TestList_CacheTimeoutFallsThroughToStore(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	cache := newFakeCache()
	cache.timingOut = true
	svc := NewService(store, cache, NewPlanner(false))

	page, meta, err := svc.List(context.Background(), map[string]string{"limit": "2"})
	require.NoError(t, err)

	assert.Equal(t, CacheMiss, meta.CacheStatus)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 1, cache.getCalls)
	assert.Equal(t, 1, store.queryCalls)
}

func TestList_CacheUnavailableSkipsCacheEntirely(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	cache := newFakeCache()
	cache.available = false
	svc := NewService(store, cache, NewPlanner(false))

	_, meta, err := svc.List(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, CacheMiss, meta.CacheStatus)
	assert.Zero(t, cache.getCalls)
	assert.Zero(t, cache.setCalls)
}

func TestList_CorruptCacheEntryIsAMiss(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	cache := newFakeCache()
	svc := NewService(store, cache, NewPlanner(false))

	q, err := ParseQuery(map[string]string{"limit": "2"})
	require.NoError(t, err)
	cache.entries[BuildCacheKey(q)] = []byte("corrupt payload")

	page, meta, err := svc.List(context.Background(), map[string]string{"limit": "2"})
	require.NoError(t, err)

	assert.Equal(t, CacheMiss, meta.CacheStatus)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, store.queryCalls)

	// The bad entry was replaced by a fresh encode.
	_, derr := DecodeEnvelope(cache.entries[BuildCacheKey(q)])
	assert.NoError(t, derr)
}

func TestList_NoMatches(t *testing.T) {
	store := &fakeStore{products: nil, total: 0}
	svc := NewService(store, newFakeCache(), NewPlanner(false))

	page, _, err := svc.List(context.Background(), map[string]string{"search": "nonexistent-term"})
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Len(t, page.Data, 0)
	assert.Equal(t, 0, page.TotalCount)
}

func TestList_PageBeyondRange(t *testing.T) {
	store := &fakeStore{products: electronicsFixture(), total: 3}
	svc := NewService(store, newFakeCache(), NewPlanner(false))

	page, _, err := svc.List(context.Background(), map[string]string{"page": "50", "limit": "10"})
	require.NoError(t, err)

	assert.Len(t, page.Data, 0)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 50, page.Page)
}

func TestList_ValidationFailureSkipsStoreAndCache(t *testing.T) {
	store := &fakeStore{}
	cache := newFakeCache()
	svc := NewService(store, cache, NewPlanner(false))

	_, _, err := svc.List(context.Background(), map[string]string{"page": "0", "sort_by": "weight"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
	assert.Zero(t, store.countCalls)
	assert.Zero(t, cache.getCalls)
}

func TestList_StoreFailureSurfacesAsStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := NewService(store, newFakeCache(), NewPlanner(false))

	page, _, err := svc.List(context.Background(), nil)
	assert.Nil(t, page)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorContains(t, storeErr, "connection refused")
}

func TestList_MeasuresDuration(t *testing.T) {
	svc := NewService(&fakeStore{total: 0}, newFakeCache(), NewPlanner(false))

	_, meta, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, meta.Duration, time.Duration(0))
}
