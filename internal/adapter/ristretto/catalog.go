// Package ristretto caches the tenant catalog in process using dgraph-io/ristretto.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/neomorfeo/siteclone/internal/domain"
)

const summariesKey = "catalog:summaries"

// Compile-time check: CachingCatalog implements domain.TenantCatalog.
var _ domain.TenantCatalog = (*CachingCatalog)(nil)

// CachingCatalog is a read-through cache over a domain.TenantCatalog. The
// whole summary list is cached as one entry and eligibility checks are
// answered from it.
type CachingCatalog struct {
	next  domain.TenantCatalog
	cache *ristretto.Cache[string, []domain.TenantSummary]
	ttl   time.Duration
}

// New creates a caching catalog. Entries expire after ttl.
func New(next domain.TenantCatalog, ttl time.Duration) (*CachingCatalog, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []domain.TenantSummary]{
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachingCatalog{next: next, cache: c, ttl: ttl}, nil
}

func (c *CachingCatalog) List(ctx context.Context) ([]domain.TenantSummary, error) {
	if summaries, ok := c.cache.Get(summariesKey); ok {
		return summaries, nil
	}

	summaries, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(summariesKey, summaries, 1, c.ttl)
	c.cache.Wait()
	return summaries, nil
}

func (c *CachingCatalog) IsEligible(ctx context.Context, tenantID string) (bool, error) {
	summaries, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range summaries {
		if s.ID == tenantID {
			return s.Eligible, nil
		}
	}
	// Not cached yet; the tenant may have been created since.
	return c.next.IsEligible(ctx, tenantID)
}

// Invalidate drops the cached summaries.
func (c *CachingCatalog) Invalidate() {
	c.cache.Del(summariesKey)
}

// Close shuts down the cache and releases resources.
func (c *CachingCatalog) Close() {
	c.cache.Close()
}
