// Package memory holds an in-process catalog store loaded from a JSON
// fixture. It backs local development (CATALOG_BACKEND=memory), the CLI and
// end-to-end tests, and mirrors the Postgres adapter's matching rules.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

// Fixture is the on-disk layout of a catalog snapshot
type Fixture struct {
	Providers []*entities.Provider         `json:"providers"`
	Branches  []*entities.Branch           `json:"branches"`
	Items     []*entities.CatalogItem      `json:"items"`
	Links     []*entities.AvailabilityLink `json:"links"`
}

// CatalogStore serves a fixed catalog snapshot. It is read-only after
// construction and safe for concurrent use.
type CatalogStore struct {
	items     []*entities.CatalogItem
	providers map[string]*entities.Provider
	branches  map[string]*entities.Branch
	links     []*entities.AvailabilityLink
}

var (
	_ repositories.CatalogRepository  = (*CatalogStore)(nil)
	_ repositories.ProviderRepository = (*CatalogStore)(nil)
)

// NewCatalogStore builds a store from an in-memory fixture
func NewCatalogStore(f Fixture) *CatalogStore {
	s := &CatalogStore{
		items:     f.Items,
		providers: make(map[string]*entities.Provider, len(f.Providers)),
		branches:  make(map[string]*entities.Branch, len(f.Branches)),
		links:     f.Links,
	}
	for _, p := range f.Providers {
		s.providers[p.ID] = p
	}
	for _, b := range f.Branches {
		s.branches[b.ID] = b
	}
	return s
}

// ReadFixture parses a JSON catalog snapshot
func ReadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read catalog fixture: %w", err)
	}

	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse catalog fixture: %w", err)
	}
	return f, nil
}

// LoadCatalogStore reads a JSON fixture from disk
func LoadCatalogStore(path string) (*CatalogStore, error) {
	f, err := ReadFixture(path)
	if err != nil {
		return nil, err
	}
	return NewCatalogStore(f), nil
}

// FindItems applies the token OR and structural AND predicates
func (s *CatalogStore) FindItems(ctx context.Context, q repositories.ItemQuery) ([]*entities.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := make([]string, len(q.Tokens))
	for i, t := range q.Tokens {
		tokens[i] = strings.ToLower(t)
	}

	out := []*entities.CatalogItem{}
	for _, item := range s.items {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.ProviderID != "" && item.ProviderID != q.ProviderID {
			continue
		}
		if q.Kind != "" && item.Kind != q.Kind {
			continue
		}
		if q.MinPrice != nil && item.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && item.Price > *q.MaxPrice {
			continue
		}
		if len(tokens) > 0 && !matchesAnyToken(item, tokens) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func matchesAnyToken(item *entities.CatalogItem, tokens []string) bool {
	keywords := strings.ToLower(item.Keywords)
	name := strings.ToLower(item.Name)
	for _, t := range tokens {
		if strings.Contains(keywords, t) || strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// FindAvailabilityLinks returns links for the given items joined with their branch.
// Links pointing at unknown branches are skipped, as an inner join would.
func (s *CatalogStore) FindAvailabilityLinks(ctx context.Context, itemIDs []string, availableOnly bool) ([]*entities.AvailabilityLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	out := []*entities.AvailabilityLink{}
	for _, link := range s.links {
		if _, ok := wanted[link.ItemID]; !ok {
			continue
		}
		if availableOnly && !link.IsAvailable {
			continue
		}
		branch, ok := s.branches[link.BranchID]
		if !ok {
			continue
		}
		joined := *link
		joined.Branch = *branch
		out = append(out, &joined)
	}
	return out, nil
}

// FindSuggestionCandidates applies the three-branch autocomplete predicate
func (s *CatalogStore) FindSuggestionCandidates(ctx context.Context, q repositories.SuggestionQuery) ([]*entities.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := strings.ToLower(q.Raw)
	normalized := strings.ToLower(q.Normalized)

	out := []*entities.CatalogItem{}
	for _, item := range s.items {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.BookableOnly && !item.IsBookable {
			continue
		}
		name := strings.ToLower(item.Name)
		if strings.HasPrefix(name, raw) ||
			strings.Contains(name, raw) ||
			strings.Contains(strings.ToLower(item.Keywords), normalized) {
			out = append(out, item)
		}
	}
	return out, nil
}

// ListItems pages through items in fixture order
func (s *CatalogStore) ListItems(ctx context.Context, filter repositories.ListFilter) ([]*entities.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := []*entities.CatalogItem{}
	for _, item := range s.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		matched = append(matched, item)
	}

	if filter.Offset >= len(matched) {
		return []*entities.CatalogItem{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// GetByIDs resolves providers; unknown ids are omitted
func (s *CatalogStore) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*entities.Provider, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.providers[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
