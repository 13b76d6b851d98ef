package source

import (
	"context"

	"golang.org/x/sync/singleflight"

	"anggaran/internal/cache"
	"anggaran/internal/core"
	applog "anggaran/internal/log"
)

// CachedLoader memoizes successful loads per connection identity.
// Concurrent misses for one key share a single query. Failures are never
// stored, so the next call retries.
type CachedLoader struct {
	next   DepartmentLoader
	cache  cache.Cache[[]core.Department]
	group  singleflight.Group
	logger *applog.Logger
}

func NewCachedLoader(next DepartmentLoader, c cache.Cache[[]core.Department], logger *applog.Logger) *CachedLoader {
	return &CachedLoader{
		next:   next,
		cache:  c,
		logger: logger.WithComponent(applog.ComponentSource),
	}
}

// Load returns the cached rows for p or loads them through the wrapped loader.
func (c *CachedLoader) Load(ctx context.Context, p ConnParams) ([]core.Department, error) {
	key := p.Key()
	if rows, ok := c.cache.Get(key); ok {
		c.logger.DebugContext(ctx, "Source cache hit", applog.FieldAddress, p.Address(), applog.FieldCacheHit, true)
		return clone(rows), nil
	}

	// The shared load outlives any single caller; the wrapped loader's own
	// timeout bounds it.
	ch := c.group.DoChan(key, func() (any, error) {
		rows, err := c.next.Load(context.WithoutCancel(ctx), p)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, rows)
		return rows, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return clone(r.Val.([]core.Department)), nil
	}
}

// Invalidate drops the cached rows for p.
func (c *CachedLoader) Invalidate(p ConnParams) {
	c.cache.Delete(p.Key())
}

func clone(rows []core.Department) []core.Department {
	return append([]core.Department(nil), rows...)
}
