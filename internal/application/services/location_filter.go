package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/textnorm"
	"go.opentelemetry.io/otel/attribute"
)

// LocationFilter narrows candidates to items available at a matching branch
type LocationFilter struct {
	repo    repositories.CatalogRepository
	metrics *observability.Metrics
}

// NewLocationFilter creates a new location filter
func NewLocationFilter(repo repositories.CatalogRepository, metrics *observability.Metrics) *LocationFilter {
	return &LocationFilter{repo: repo, metrics: metrics}
}

// FilterByLocation keeps the items with at least one available link whose
// branch district and city contain the requested ones after normalization.
// Blank district and city make it a no-op. Items without links are dropped
// whenever a constraint is given. Input order is preserved.
func (f *LocationFilter) FilterByLocation(ctx context.Context, items []*entities.CatalogItem, district, city string) ([]*entities.CatalogItem, error) {
	district = textnorm.Normalize(district)
	city = textnorm.Normalize(city)
	if district == "" && city == "" {
		return items, nil
	}
	if len(items) == 0 {
		return items, nil
	}

	ctx, span := observability.StartSpan(ctx, "LocationFilter.FilterByLocation")
	defer span.End()

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	start := time.Now()
	links, err := f.repo.FindAvailabilityLinks(ctx, ids, true)
	observability.RecordDBMetric(ctx, f.metrics, "find_availability_links", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to fetch availability links", err)
	}

	reachable := make(map[string]struct{})
	for _, link := range links {
		if !link.IsAvailable {
			continue
		}
		if district != "" && !strings.Contains(textnorm.Normalize(link.Branch.District), district) {
			continue
		}
		if city != "" && !strings.Contains(textnorm.Normalize(link.Branch.City), city) {
			continue
		}
		reachable[link.ItemID] = struct{}{}
	}

	out := make([]*entities.CatalogItem, 0, len(reachable))
	for _, item := range items {
		if _, ok := reachable[item.ID]; ok {
			out = append(out, item)
		}
	}

	observability.SetSpanAttributes(span,
		attribute.Int("search.links", len(links)),
		attribute.Int("search.located", len(out)),
	)
	observability.RecordStageCount(ctx, f.metrics, "location", len(out))
	return out, nil
}
