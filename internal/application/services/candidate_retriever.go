package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
	"github.com/zatekoja/catalogsearch/pkg/textnorm"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultRetrievalCap bounds how many candidates one search pulls from the store
const DefaultRetrievalCap = 500

// SearchQuery is a user query in the forms the pipeline stages consume
type SearchQuery struct {
	Raw        string
	Normalized string
	Tokens     []string
}

// ParseQuery trims, normalizes and tokenizes q
func ParseQuery(q string, minTokenLength int) SearchQuery {
	if minTokenLength <= 0 {
		minTokenLength = textnorm.DefaultMinTokenLength
	}
	raw := strings.TrimSpace(q)
	return SearchQuery{
		Raw:        raw,
		Normalized: textnorm.Normalize(raw),
		Tokens:     textnorm.TokenizeMin(raw, minTokenLength),
	}
}

// IsEmpty reports whether no query text was given
func (q SearchQuery) IsEmpty() bool {
	return q.Raw == ""
}

// SearchFilters are the structural predicates of a search. Nil or empty
// fields are not applied.
type SearchFilters struct {
	ProviderID string
	Kind       entities.ItemKind
	MinPrice   *float64
	MaxPrice   *float64
}

// CandidateRetriever performs the broad, high-recall fetch of a search
type CandidateRetriever struct {
	repo    repositories.CatalogRepository
	cap     int
	metrics *observability.Metrics
}

// NewCandidateRetriever creates a retriever that over-fetches up to retrievalCap items
func NewCandidateRetriever(repo repositories.CatalogRepository, retrievalCap int, metrics *observability.Metrics) *CandidateRetriever {
	if retrievalCap <= 0 {
		retrievalCap = DefaultRetrievalCap
	}
	return &CandidateRetriever{
		repo:    repo,
		cap:     retrievalCap,
		metrics: metrics,
	}
}

// Cap returns the retrieval cap
func (r *CandidateRetriever) Cap() int {
	return r.cap
}

// Retrieve returns active items matching any query token in their keywords or
// name, AND'ed with the structural filters. Matches past the cap are dropped.
func (r *CandidateRetriever) Retrieve(ctx context.Context, query SearchQuery, filters SearchFilters) ([]*entities.CatalogItem, error) {
	ctx, span := observability.StartSpan(ctx, "CandidateRetriever.Retrieve")
	defer span.End()

	start := time.Now()
	items, err := r.repo.FindItems(ctx, repositories.ItemQuery{
		Tokens:     query.Tokens,
		ProviderID: filters.ProviderID,
		Kind:       filters.Kind,
		MinPrice:   filters.MinPrice,
		MaxPrice:   filters.MaxPrice,
		Status:     entities.ItemStatusActive,
		Limit:      r.cap,
	})
	observability.RecordDBMetric(ctx, r.metrics, "find_items", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to retrieve candidates", err)
	}

	observability.SetSpanAttributes(span,
		attribute.Int("search.tokens", len(query.Tokens)),
		attribute.Int("search.candidates", len(items)),
	)
	observability.RecordStageCount(ctx, r.metrics, "retrieval", len(items))
	return items, nil
}

// storeError keeps typed errors from the store and marks anything else as a
// store failure.
func storeError(message string, err error) error {
	if apperrors.TypeOf(err) != apperrors.ErrorTypeInternal {
		return err
	}
	return apperrors.NewStoreUnavailableError(message, err)
}
