package shop

import (
	"context"
	"time"

	"github.com/MikeMC777/cafe-pos/internal/cache"
)

// Cached fronts a Repository with a read-through cache for GetByID, which
// order pricing hits on every request. Writes invalidate the entry.
type Cached struct {
	Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCached(repo Repository, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{Repository: repo, cache: c, ttl: ttl}
}

func (c *Cached) key(id string) string { return c.cache.GenerateKey("shop", id) }

func (c *Cached) GetByID(ctx context.Context, id string) (*Shop, error) {
	return cache.Remember(ctx, c.cache, c.key(id), c.ttl, func(ctx context.Context) (*Shop, error) {
		return c.Repository.GetByID(ctx, id)
	})
}

func (c *Cached) Update(ctx context.Context, s *Shop) error {
	if err := c.Repository.Update(ctx, s); err != nil {
		return err
	}
	_ = c.cache.Delete(ctx, c.key(s.ID))
	return nil
}

func (c *Cached) Delete(ctx context.Context, id string) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.cache.Delete(ctx, c.key(id))
	return nil
}
