package cache

import (
	"context"

	repo "storefront/internal/repository"
)

// REDIS_URLが無いとき用。常にミス
type NoopCache struct{}

var _ repo.CatalogCache = NoopCache{}

func (NoopCache) Get(context.Context, string, any) error   { return repo.ErrCacheMiss }
func (NoopCache) Set(context.Context, string, any) error   { return nil }
func (NoopCache) InvalidateProducts(context.Context) error { return nil }
