package stores

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/chargeangels/authz"
)

// TenantCache fronts an organization store with a TTL cache of tenant
// records, the hottest lookup on the charging-station flows. Tenant
// component flags change rarely; callers that flip a component should
// Invalidate. Only GetTenant is cached, the site structure always hits
// the inner store.
type TenantCache struct {
	authz.OrganizationStore
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewTenantCache(inner authz.OrganizationStore, ttl time.Duration) (*TenantCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &TenantCache{OrganizationStore: inner, cache: cache, ttl: ttl}, nil
}

func (c *TenantCache) GetTenant(ctx context.Context, tenantID string) (*authz.Tenant, error) {
	if v, ok := c.cache.Get(tenantID); ok {
		if t, ok := v.(*authz.Tenant); ok {
			return t, nil
		}
	}
	t, err := c.OrganizationStore.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(tenantID, t, 1, c.ttl)
	return t, nil
}

func (c *TenantCache) Invalidate(tenantID string) {
	c.cache.Del(tenantID)
}

func (c *TenantCache) Close() {
	c.cache.Close()
}
