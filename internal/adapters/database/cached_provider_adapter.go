package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/providers"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
)

// CachedProviderAdapter wraps a ProviderRepository with a read-through cache
type CachedProviderAdapter struct {
	adapter    repositories.ProviderRepository
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter:    adapter,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

func providerCacheKey(id string) string {
	return fmt.Sprintf("provider:%s", id)
}

// GetByIDs serves cached providers and fetches the rest in one batch
func (a *CachedProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}
	logger := observability.LoggerFromContext(ctx)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = providerCacheKey(id)
	}

	cached, err := a.cache.GetMulti(ctx, keys)
	if err != nil {
		logger.Warn().Err(err).Msg("provider cache read failed, falling back to store")
		cached = nil
	}

	found := make([]*entities.Provider, 0, len(ids))
	missing := make([]string, 0)
	for i, id := range ids {
		if data, ok := cached[keys[i]]; ok {
			var provider entities.Provider
			if err := json.Unmarshal(data, &provider); err == nil {
				found = append(found, &provider)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(found) > 0 {
		observability.RecordCacheHit(ctx, a.metrics, "provider")
	}
	if len(missing) == 0 {
		return found, nil
	}
	observability.RecordCacheMiss(ctx, a.metrics, "provider")

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	items := make(map[string][]byte, len(fetched))
	for _, provider := range fetched {
		if data, err := json.Marshal(provider); err == nil {
			items[providerCacheKey(provider.ID)] = data
		}
	}
	if err := a.cache.SetMulti(ctx, items, a.ttlSeconds); err != nil {
		logger.Warn().Err(err).Int("count", len(items)).Msg("failed to cache providers")
	}

	return append(found, fetched...), nil
}
