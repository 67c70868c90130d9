// Package app assembles the catalog stores and search services from
// configuration. It is shared by the API server and the command line tools.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/catalogsearch/internal/adapters/cache"
	"github.com/zatekoja/catalogsearch/internal/adapters/database"
	"github.com/zatekoja/catalogsearch/internal/adapters/memory"
	"github.com/zatekoja/catalogsearch/internal/adapters/search"
	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/domain/providers"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/redis"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

// App holds the wired catalog stores and pipelines
type App struct {
	Catalog   repositories.CatalogRepository
	Providers repositories.ProviderRepository
	Cache     providers.CacheProvider

	Search      *services.CatalogSearchService
	Suggestions *services.SuggestionService

	// Index is set only for the typesense backend
	Index *search.TypesenseAdapter

	closers []func() error
}

// Options tweaks what Build connects to
type Options struct {
	// WithCache connects Redis (when enabled) and wraps provider lookups
	WithCache bool
}

// Build connects the configured catalog backend and constructs the services
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, opts Options) (*App, error) {
	a := &App{}

	if err := a.buildStores(ctx, cfg, metrics); err != nil {
		a.Close()
		return nil, err
	}

	if opts.WithCache {
		a.Cache = a.buildCache(cfg)
		a.Providers = database.NewCachedProviderAdapter(a.Providers, a.Cache, cfg.Cache.ProviderTTLSeconds, metrics)
	}

	a.Search, a.Suggestions = BuildServices(cfg.Search, a.Catalog, a.Providers, metrics)
	return a, nil
}

// BuildServices constructs the search and suggestion pipelines over the given stores
func BuildServices(
	cfg config.SearchConfig,
	catalog repositories.CatalogRepository,
	providerRepo repositories.ProviderRepository,
	metrics *observability.Metrics,
) (*services.CatalogSearchService, *services.SuggestionService) {
	weights := services.DefaultScoringWeights().Override(services.ScoringWeights{
		NameExact:        cfg.Weights.NameExact,
		NamePrefix:       cfg.Weights.NamePrefix,
		NameContains:     cfg.Weights.NameContains,
		TokenInName:      cfg.Weights.TokenInName,
		AllTokensInName:  cfg.Weights.AllTokensInName,
		TokenInKeywords:  cfg.Weights.TokenInKeywords,
		TokenInDesc:      cfg.Weights.TokenInDesc,
		PackageBoost:     cfg.Weights.PackageBoost,
		TieredPriceBoost: cfg.Weights.TieredPriceBoost,
	})

	searchService := services.NewCatalogSearchService(
		services.NewCandidateRetriever(catalog, cfg.RetrievalCap, metrics),
		services.NewLocationFilter(catalog, metrics),
		services.NewSearchRankingService(weights, cfg.ZeroScoreThreshold),
		providerRepo,
		services.SearchOptions{
			DefaultLimit:   cfg.DefaultLimit,
			MinTokenLength: cfg.MinTokenLength,
		},
		metrics,
	)

	suggestionService := services.NewSuggestionService(
		catalog,
		providerRepo,
		services.SuggestionOptions{
			MinQueryLength: cfg.SuggestMinQuery,
			FetchCap:       cfg.SuggestFetchCap,
			Limit:          cfg.SuggestLimit,
		},
		metrics,
	)

	return searchService, suggestionService
}

func (a *App) buildStores(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) error {
	if cfg.Catalog.Backend == config.CatalogBackendMemory {
		store, err := memory.LoadCatalogStore(cfg.Catalog.FixturePath)
		if err != nil {
			return err
		}
		log.Info().Str("fixture", cfg.Catalog.FixturePath).Msg("catalog served from fixture")
		a.Catalog = store
		a.Providers = store
		return nil
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}
	a.closers = append(a.closers, pgClient.Close)

	primary := database.NewCatalogAdapter(pgClient, metrics)
	a.Catalog = primary
	a.Providers = database.NewProviderAdapter(pgClient, metrics)

	if cfg.Catalog.Backend != config.CatalogBackendTypesense {
		return nil
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return fmt.Errorf("failed to initialize Typesense client: %w", err)
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to init Typesense schema: %w", err)
	}

	a.Index = search.NewTypesenseAdapter(tsClient, metrics)
	a.Catalog = search.NewCompositeCatalogStore(a.Index, primary)
	return nil
}

// buildCache prefers Redis and falls back to an in-process cache
func (a *App) buildCache(cfg *config.Config) providers.CacheProvider {
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&cfg.Redis)
		if err == nil {
			a.closers = append(a.closers, client.Close)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis cache initialized")
			return cache.NewRedisAdapter(client)
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache")
	}
	return cache.NewMemoryAdapter()
}

// Close releases every connection Build opened
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
	a.closers = nil
}
