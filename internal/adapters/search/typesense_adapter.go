package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	tsclient "github.com/zatekoja/catalogsearch/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

// maxPerPage is the largest page Typesense serves
const maxPerPage = 250

// TypesenseAdapter retrieves catalog items from a Typesense collection.
// Its recall is approximate; callers re-score every hit precisely.
type TypesenseAdapter struct {
	client  *tsclient.Client
	metrics *observability.Metrics
}

// Ensure TypesenseAdapter implements ItemSearcher
var _ ItemSearcher = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, metrics *observability.Metrics) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, metrics: metrics}
}

// Index upserts a catalog item
func (a *TypesenseAdapter) Index(ctx context.Context, item *entities.CatalogItem) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, ItemDocument(item))
	if err != nil {
		return apperrors.NewExternalError("failed to index catalog item "+item.ID, err)
	}
	return nil
}

// Delete removes an item from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to delete catalog item "+id, err)
	}
	return nil
}

// FindItems returns items where any token is a substring of the name or the
// keywords, with the structural predicates as filters. Each token is its own
// exact (typo-free) infix search; results are merged by id, newest first.
func (a *TypesenseAdapter) FindItems(ctx context.Context, q repositories.ItemQuery) ([]*entities.CatalogItem, error) {
	return a.searchAll(ctx, "typesense_find_items", itemSearchParams(q), q.Limit)
}

// FindSuggestionCandidates matches the raw query against names (prefix or
// infix) and the normalized query against keywords.
func (a *TypesenseAdapter) FindSuggestionCandidates(ctx context.Context, q repositories.SuggestionQuery) ([]*entities.CatalogItem, error) {
	return a.searchAll(ctx, "typesense_find_suggestions", suggestionSearchParams(q), q.Limit)
}

// itemSearchParams builds one search per distinct token, or a single
// match-all search when there are none.
func itemSearchParams(q repositories.ItemQuery) []*api.SearchCollectionParams {
	filter := buildItemFilter(q)

	tokens := uniqueTokens(q.Tokens)
	if len(tokens) == 0 {
		return []*api.SearchCollectionParams{
			exactSearch("*", "name,keywords", "off,off", filter),
		}
	}

	params := make([]*api.SearchCollectionParams, 0, len(tokens))
	for _, token := range tokens {
		params = append(params, exactSearch(token, "name,keywords", "always,always", filter))
	}
	return params
}

// suggestionSearchParams builds the name and keyword branches of the
// autocomplete predicate.
func suggestionSearchParams(q repositories.SuggestionQuery) []*api.SearchCollectionParams {
	filter := buildSuggestionFilter(q)

	params := []*api.SearchCollectionParams{}
	if raw := strings.TrimSpace(q.Raw); raw != "" {
		name := exactSearch(raw, "name", "always", filter)
		name.Prefix = pointer.String("true")
		params = append(params, name)
	}
	if normalized := strings.TrimSpace(q.Normalized); normalized != "" {
		params = append(params, exactSearch(normalized, "keywords", "always", filter))
	}
	return params
}

func exactSearch(query, queryBy, infix, filter string) *api.SearchCollectionParams {
	params := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String(queryBy),
		Infix:    pointer.String(infix),
		NumTypos: pointer.String("0"),
		// never relax a multi-word query into a partial match
		DropTokensThreshold: pointer.Int(0),
		Prefix:              pointer.String("false"),
		SortBy:              pointer.String("created_at:desc"),
	}
	if filter != "" {
		params.FilterBy = pointer.String(filter)
	}
	return params
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// searchAll runs every search and merges the hits by id. Each search is
// capped at limit, which is enough to keep the newest limit items of the
// union.
func (a *TypesenseAdapter) searchAll(ctx context.Context, operation string, params []*api.SearchCollectionParams, limit int) ([]*entities.CatalogItem, error) {
	results := make([][]*entities.CatalogItem, 0, len(params))
	for _, p := range params {
		items, err := a.search(ctx, operation, p, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, items)
	}
	return mergeByRecency(results, limit), nil
}

// mergeByRecency unions result lists by id and orders them the way the
// Postgres store does: created_at descending, then id.
func mergeByRecency(results [][]*entities.CatalogItem, limit int) []*entities.CatalogItem {
	seen := make(map[string]struct{})
	merged := []*entities.CatalogItem{}
	for _, items := range results {
		for _, item := range items {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			merged = append(merged, item)
		}
	}

	if len(results) > 1 {
		sort.SliceStable(merged, func(i, j int) bool {
			if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
				return merged[i].CreatedAt.After(merged[j].CreatedAt)
			}
			return merged[i].ID < merged[j].ID
		})
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (a *TypesenseAdapter) search(ctx context.Context, operation string, params *api.SearchCollectionParams, limit int) ([]*entities.CatalogItem, error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
	}()

	perPage := maxPerPage
	if limit > 0 && limit < perPage {
		perPage = limit
	}
	params.PerPage = pointer.Int(perPage)

	items := []*entities.CatalogItem{}
	for page := 1; ; page++ {
		params.Page = pointer.Int(page)

		result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to search catalog index", err)
		}
		if result.Hits == nil {
			break
		}

		hits := *result.Hits
		for _, hit := range hits {
			if hit.Document == nil {
				continue
			}
			items = append(items, itemFromDocument(*hit.Document))
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
		if len(hits) < perPage {
			break
		}
	}
	return items, nil
}
