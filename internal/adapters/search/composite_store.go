package search

import (
	"context"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

// ItemSearcher is the subset of the catalog store a search index can serve
type ItemSearcher interface {
	FindItems(ctx context.Context, query repositories.ItemQuery) ([]*entities.CatalogItem, error)
	FindSuggestionCandidates(ctx context.Context, query repositories.SuggestionQuery) ([]*entities.CatalogItem, error)
}

// CompositeCatalogStore serves text retrieval from a search index and
// everything else (availability links, listing) from the primary store.
type CompositeCatalogStore struct {
	index   ItemSearcher
	primary repositories.CatalogRepository
}

var _ repositories.CatalogRepository = (*CompositeCatalogStore)(nil)

// NewCompositeCatalogStore creates a new composite store
func NewCompositeCatalogStore(index ItemSearcher, primary repositories.CatalogRepository) *CompositeCatalogStore {
	return &CompositeCatalogStore{index: index, primary: primary}
}

// FindItems is served by the index
func (s *CompositeCatalogStore) FindItems(ctx context.Context, q repositories.ItemQuery) ([]*entities.CatalogItem, error) {
	return s.index.FindItems(ctx, q)
}

// FindSuggestionCandidates is served by the index
func (s *CompositeCatalogStore) FindSuggestionCandidates(ctx context.Context, q repositories.SuggestionQuery) ([]*entities.CatalogItem, error) {
	return s.index.FindSuggestionCandidates(ctx, q)
}

// FindAvailabilityLinks is served by the primary store
func (s *CompositeCatalogStore) FindAvailabilityLinks(ctx context.Context, itemIDs []string, availableOnly bool) ([]*entities.AvailabilityLink, error) {
	return s.primary.FindAvailabilityLinks(ctx, itemIDs, availableOnly)
}

// ListItems is served by the primary store
func (s *CompositeCatalogStore) ListItems(ctx context.Context, filter repositories.ListFilter) ([]*entities.CatalogItem, error) {
	return s.primary.ListItems(ctx, filter)
}
