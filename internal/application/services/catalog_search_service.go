package services

import (
	"context"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultResultLimit is the result size when the caller gives none
const DefaultResultLimit = 200

// SearchParams is one search request after parsing. Filters that failed to
// parse are already absent.
type SearchParams struct {
	Query    string
	District string
	City     string
	Filters  SearchFilters
	Limit    int
	// WithScores surfaces the ranking key on each result item
	WithScores bool
}

// SearchOptions tunes the search pipeline
type SearchOptions struct {
	DefaultLimit   int
	MinTokenLength int
}

// CatalogSearchService runs retrieval, location filtering, scoring and ranking
type CatalogSearchService struct {
	retriever    *CandidateRetriever
	locations    *LocationFilter
	ranking      *SearchRankingService
	providerRepo repositories.ProviderRepository
	opts         SearchOptions
	metrics      *observability.Metrics
}

// NewCatalogSearchService creates a new catalog search service
func NewCatalogSearchService(
	retriever *CandidateRetriever,
	locations *LocationFilter,
	ranking *SearchRankingService,
	providerRepo repositories.ProviderRepository,
	opts SearchOptions,
	metrics *observability.Metrics,
) *CatalogSearchService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultResultLimit
	}
	return &CatalogSearchService{
		retriever:    retriever,
		locations:    locations,
		ranking:      ranking,
		providerRepo: providerRepo,
		opts:         opts,
		metrics:      metrics,
	}
}

// Search returns the ranked items for params. A store failure aborts the
// whole request; no matches is a successful empty result.
func (s *CatalogSearchService) Search(ctx context.Context, params SearchParams) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "CatalogSearchService.Search")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	query := ParseQuery(params.Query, s.opts.MinTokenLength)
	limit := s.resolveLimit(params.Limit)

	candidates, err := s.retriever.Retrieve(ctx, query, params.Filters)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	candidates, err = s.locations.FilterByLocation(ctx, candidates, params.District, params.City)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	var scored []entities.ScoredItem
	if query.IsEmpty() {
		scored = Unscored(candidates)
	} else {
		scored = s.ranking.ScoreAll(candidates, query)
	}
	ranked := s.ranking.Rank(scored, limit, !query.IsEmpty())

	items := make([]*entities.CatalogItem, len(ranked))
	for i, r := range ranked {
		items[i] = r.Item
	}
	providers, err := resolveProviders(ctx, s.providerRepo, items)
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to resolve providers", err)
	}

	result := &entities.SearchResult{
		Items: make([]entities.SearchResultItem, len(ranked)),
		Total: len(ranked),
	}
	if !query.IsEmpty() {
		q := query.Raw
		result.Query = &q
	}
	for i, r := range ranked {
		resultItem := entities.SearchResultItem{
			CatalogItem: r.Item,
			Provider:    providers[r.Item.ProviderID],
		}
		if params.WithScores {
			score := r.Score
			resultItem.Score = &score
		}
		result.Items[i] = resultItem
	}

	observability.SetSpanAttributes(span,
		attribute.String("search.query", query.Normalized),
		attribute.Int("search.limit", limit),
		attribute.Int("search.results", result.Total),
	)
	observability.RecordResultCount(ctx, s.metrics, "search", result.Total)
	logger.Debug().
		Str("query", query.Normalized).
		Strs("tokens", query.Tokens).
		Str("district", params.District).
		Str("city", params.City).
		Int("candidates", len(candidates)).
		Int("results", result.Total).
		Dur("duration", time.Since(start)).
		Msg("catalog search completed")

	return result, nil
}

// resolveLimit applies the default to non-positive limits and clamps to the
// retrieval cap, which bounds what ranking can ever see.
func (s *CatalogSearchService) resolveLimit(limit int) int {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if c := s.retriever.Cap(); limit > c {
		limit = c
	}
	return limit
}
