package repositories

import (
	"context"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
)

// CatalogRepository defines the read operations the search pipeline needs
// from the catalog store.
type CatalogRepository interface {
	// FindItems returns items matching the query's token and structural predicates
	FindItems(ctx context.Context, query ItemQuery) ([]*entities.CatalogItem, error)

	// FindAvailabilityLinks returns the links for the given items, joined with their branch
	FindAvailabilityLinks(ctx context.Context, itemIDs []string, availableOnly bool) ([]*entities.AvailabilityLink, error)

	// FindSuggestionCandidates returns items for the autocomplete path
	FindSuggestionCandidates(ctx context.Context, query SuggestionQuery) ([]*entities.CatalogItem, error)

	// ListItems pages through items, used by the indexer and the CLI
	ListItems(ctx context.Context, filter ListFilter) ([]*entities.CatalogItem, error)
}

// ItemQuery is the broad, high-recall retrieval predicate.
//
// An item matches when at least one token is a case-insensitive substring of
// its keywords or its name, and every non-empty structural field matches.
// An empty Tokens slice applies no text predicate.
type ItemQuery struct {
	Tokens     []string
	ProviderID string
	Kind       entities.ItemKind
	MinPrice   *float64
	MaxPrice   *float64
	Status     entities.ItemStatus
	Limit      int
}

// SuggestionQuery is the three-branch OR used by autocomplete: name prefix of
// the raw query, name substring of the raw query, keyword substring of the
// normalized query.
type SuggestionQuery struct {
	Raw          string
	Normalized   string
	Status       entities.ItemStatus
	BookableOnly bool
	Limit        int
}

// ListFilter pages through catalog items
type ListFilter struct {
	Status entities.ItemStatus
	Limit  int
	Offset int
}

// ProviderRepository resolves providers for display
type ProviderRepository interface {
	// GetByIDs retrieves multiple providers by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error)
}
