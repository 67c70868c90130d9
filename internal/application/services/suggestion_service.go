package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/catalogsearch/internal/application/loaders"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/textnorm"
	"go.opentelemetry.io/otel/attribute"
)

// Suggestion defaults
const (
	DefaultSuggestMinQuery = 2
	DefaultSuggestFetchCap = 15
	DefaultSuggestLimit    = 8
)

// SuggestionOptions tunes the autocomplete pipeline
type SuggestionOptions struct {
	MinQueryLength int
	FetchCap       int
	Limit          int
}

// DefaultSuggestionOptions returns the production settings
func DefaultSuggestionOptions() SuggestionOptions {
	return SuggestionOptions{
		MinQueryLength: DefaultSuggestMinQuery,
		FetchCap:       DefaultSuggestFetchCap,
		Limit:          DefaultSuggestLimit,
	}
}

// SuggestionService produces autocomplete entries
type SuggestionService struct {
	catalogRepo  repositories.CatalogRepository
	providerRepo repositories.ProviderRepository
	opts         SuggestionOptions
	metrics      *observability.Metrics
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	catalogRepo repositories.CatalogRepository,
	providerRepo repositories.ProviderRepository,
	opts SuggestionOptions,
	metrics *observability.Metrics,
) *SuggestionService {
	defaults := DefaultSuggestionOptions()
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = defaults.MinQueryLength
	}
	if opts.FetchCap <= 0 {
		opts.FetchCap = defaults.FetchCap
	}
	if opts.Limit <= 0 {
		opts.Limit = defaults.Limit
	}
	return &SuggestionService{
		catalogRepo:  catalogRepo,
		providerRepo: providerRepo,
		opts:         opts,
		metrics:      metrics,
	}
}

// Suggest returns up to Limit suggestions for q. Queries shorter than
// MinQueryLength return an empty slice without touching the store.
func (s *SuggestionService) Suggest(ctx context.Context, q string) ([]*entities.Suggestion, error) {
	raw := strings.TrimSpace(q)
	if utf8.RuneCountInString(raw) < s.opts.MinQueryLength {
		return []*entities.Suggestion{}, nil
	}

	ctx, span := observability.StartSpan(ctx, "SuggestionService.Suggest")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	normalized := textnorm.Normalize(raw)

	start := time.Now()
	items, err := s.catalogRepo.FindSuggestionCandidates(ctx, repositories.SuggestionQuery{
		Raw:          raw,
		Normalized:   normalized,
		Status:       entities.ItemStatusActive,
		BookableOnly: true,
		Limit:        s.opts.FetchCap,
	})
	observability.RecordDBMetric(ctx, s.metrics, "find_suggestion_candidates", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to fetch suggestion candidates", err)
	}

	items = OrderSuggestions(dedupeByName(items), normalized)
	if len(items) > s.opts.Limit {
		items = items[:s.opts.Limit]
	}

	providers, err := resolveProviders(ctx, s.providerRepo, items)
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to resolve providers", err)
	}

	suggestions := make([]*entities.Suggestion, len(items))
	for i, item := range items {
		suggestion := &entities.Suggestion{
			ID:       item.ID,
			Name:     item.Name,
			Kind:     item.Kind,
			Category: item.Category,
			Price:    item.Price,
		}
		if p := providers[item.ProviderID]; p != nil {
			suggestion.ProviderName = p.Name
		}
		suggestions[i] = suggestion
	}

	observability.SetSpanAttributes(span, attribute.Int("suggest.results", len(suggestions)))
	observability.RecordResultCount(ctx, s.metrics, "suggest", len(suggestions))
	logger.Debug().
		Str("query", raw).
		Int("candidates", len(items)).
		Int("results", len(suggestions)).
		Msg("suggestions computed")

	return suggestions, nil
}

// dedupeByName keeps the first item for each exact display name
func dedupeByName(items []*entities.CatalogItem) []*entities.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]*entities.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		out = append(out, item)
	}
	return out
}

// OrderSuggestions sorts items in place: names starting with the normalized
// query first, then packages, then shorter names. Remaining ties keep
// their input order.
func OrderSuggestions(items []*entities.CatalogItem, normalizedQuery string) []*entities.CatalogItem {
	type key struct {
		prefix  bool
		pkg     bool
		nameLen int
	}
	keys := make(map[*entities.CatalogItem]key, len(items))
	for _, item := range items {
		keys[item] = key{
			prefix:  strings.HasPrefix(textnorm.Normalize(item.Name), normalizedQuery),
			pkg:     item.IsPackage(),
			nameLen: utf8.RuneCountInString(item.Name),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := keys[items[i]], keys[items[j]]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.pkg != b.pkg {
			return a.pkg
		}
		return a.nameLen < b.nameLen
	})
	return items
}

// resolveProviders batches provider lookups through the request's loaders,
// building fresh ones when none are attached.
func resolveProviders(ctx context.Context, repo repositories.ProviderRepository, items []*entities.CatalogItem) (map[string]*entities.Provider, error) {
	if repo == nil {
		return map[string]*entities.Provider{}, nil
	}

	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProviderID == "" {
			continue
		}
		if _, ok := seen[item.ProviderID]; ok {
			continue
		}
		seen[item.ProviderID] = struct{}{}
		ids = append(ids, item.ProviderID)
	}

	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(repo)
	}
	return l.Providers(ctx, ids)
}
