package listing

import (
	"context"
	"log"
	"time"

	"gitlab.connectwisedev.com/product-listing-service/models"
)

// CacheStatus tags a response with how it was produced.
type CacheStatus string

const (
	// CacheHit means the envelope was served from the cache backend.
	CacheHit CacheStatus = "HIT"
	// CacheMiss means the envelope was assembled from the store.
	CacheMiss CacheStatus = "MISS"
)

// Meta carries per-request observability data. It never influences control
// flow.
type Meta struct {
	CacheStatus CacheStatus
	Duration    time.Duration
}

// Store executes planned queries against the relational store.
type Store interface {
	CountProducts(ctx context.Context, plan QueryPlan) (int, error)
	QueryProducts(ctx context.Context, plan QueryPlan) ([]models.Product, error)
}

// Cache is the key-value backend consumed by the read path. Implementations
// must degrade to misses instead of returning errors.
type Cache interface {
	Available() bool
	Get(ctx context.Context, key string) ([]byte, bool)
	SetAsync(key string, payload []byte)
}

// Service orchestrates one listing request: validate, probe the cache, and
// on a miss run the planned queries and refill the cache without waiting.
type Service struct {
	store   Store
	cache   Cache
	planner *Planner
}

// NewService wires the listing service to its store, cache handle, and
// planner.
func NewService(store Store, cache Cache, planner *Planner) *Service {
	return &Service{store: store, cache: cache, planner: planner}
}

// List serves one listing request from raw query parameters. The returned
// error is either a *ValidationError, a *StoreError, or an internal
// planning failure; cache trouble of any kind never surfaces.
func (s *Service) List(ctx context.Context, raw map[string]string) (*models.ProductPage, Meta, error) {
	start := time.Now()

	q, err := ParseQuery(raw)
	if err != nil {
		return nil, Meta{CacheStatus: CacheMiss, Duration: time.Since(start)}, err
	}

	useCache := s.cache != nil && s.cache.Available()
	var key string
	if useCache {
		key = BuildCacheKey(q)
		if payload, ok := s.cache.Get(ctx, key); ok {
			page, derr := DecodeEnvelope(payload)
			if derr == nil {
				return page, Meta{CacheStatus: CacheHit, Duration: time.Since(start)}, nil
			}
			// Treated as a miss: the store remains authoritative and the
			// entry ages out on its TTL.
			log.Printf("Discarding cache entry %q: %v", key, derr)
		}
	}

	plan, err := s.planner.Plan(q)
	if err != nil {
		return nil, Meta{CacheStatus: CacheMiss, Duration: time.Since(start)}, err
	}

	totalCount, err := s.store.CountProducts(ctx, plan)
	if err != nil {
		return nil, Meta{CacheStatus: CacheMiss, Duration: time.Since(start)}, &StoreError{Op: "count", Err: err}
	}
	rows, err := s.store.QueryProducts(ctx, plan)
	if err != nil {
		return nil, Meta{CacheStatus: CacheMiss, Duration: time.Since(start)}, &StoreError{Op: "query", Err: err}
	}

	page := Assemble(rows, totalCount, q)

	if useCache {
		if payload, encErr := EncodeEnvelope(page); encErr != nil {
			log.Printf("Skipping cache fill for %q: %v", key, encErr)
		} else {
			s.cache.SetAsync(key, payload)
		}
	}

	return page, Meta{CacheStatus: CacheMiss, Duration: time.Since(start)}, nil
}
