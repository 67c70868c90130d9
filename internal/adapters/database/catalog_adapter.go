package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

const (
	catalogItemsTable      = "catalog_items"
	availabilityLinksTable = "availability_links"
	branchesTable          = "branches"
	providersTable         = "providers"
)

var itemColumns = []interface{}{
	"id", "name", "keywords", "short_description", "description",
	"price", "discount_price", "service_type", "category", "is_bookable",
	"tiered_pricing", "provider_id", "status", "created_at", "updated_at",
}

// CatalogAdapter implements CatalogRepository on PostgreSQL
type CatalogAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// Ensure CatalogAdapter implements CatalogRepository
var _ repositories.CatalogRepository = (*CatalogAdapter)(nil)

// NewCatalogAdapter creates a new catalog adapter. metrics may be nil.
func NewCatalogAdapter(client *postgres.Client, metrics *observability.Metrics) *CatalogAdapter {
	return &CatalogAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// FindItems retrieves the broad candidate set for a search
func (a *CatalogAdapter) FindItems(ctx context.Context, q repositories.ItemQuery) ([]*entities.CatalogItem, error) {
	ds := a.db.From(catalogItemsTable).Prepared(true).Select(itemColumns...)

	if q.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(q.Status)))
	}

	if len(q.Tokens) > 0 {
		matches := make([]exp.Expression, 0, len(q.Tokens)*2)
		for _, token := range q.Tokens {
			pattern := containsPattern(token)
			matches = append(matches,
				goqu.C("keywords").ILike(pattern),
				goqu.C("name").ILike(pattern),
			)
		}
		ds = ds.Where(goqu.Or(matches...))
	}

	if q.ProviderID != "" {
		ds = ds.Where(goqu.C("provider_id").Eq(q.ProviderID))
	}
	if q.Kind != "" {
		ds = ds.Where(goqu.C("service_type").Eq(string(q.Kind)))
	}
	if q.MinPrice != nil {
		ds = ds.Where(goqu.C("price").Gte(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		ds = ds.Where(goqu.C("price").Lte(*q.MaxPrice))
	}

	ds = ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	return a.queryItems(ctx, "find_items", ds)
}

// FindAvailabilityLinks retrieves the links of the given items joined with their branch
func (a *CatalogAdapter) FindAvailabilityLinks(ctx context.Context, itemIDs []string, availableOnly bool) ([]*entities.AvailabilityLink, error) {
	if len(itemIDs) == 0 {
		return []*entities.AvailabilityLink{}, nil
	}
	start := time.Now()
	defer func() { observability.RecordDBMetric(ctx, a.metrics, "find_availability_links", time.Since(start)) }()

	ds := a.db.From(goqu.T(availabilityLinksTable).As("al")).Prepared(true).
		InnerJoin(goqu.T(branchesTable).As("b"), goqu.On(goqu.I("al.branch_id").Eq(goqu.I("b.id")))).
		Select(
			"al.item_id", "al.branch_id", "al.is_available", "al.price_override",
			"b.provider_id", "b.district", "b.city",
		).
		Where(goqu.I("al.item_id").In(itemIDs))

	if availableOnly {
		ds = ds.Where(goqu.I("al.is_available").IsTrue())
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build availability query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to find availability links", err)
	}
	defer rows.Close()

	links := []*entities.AvailabilityLink{}
	for rows.Next() {
		link := &entities.AvailabilityLink{}
		var priceOverride sql.NullFloat64
		var providerID, district, city sql.NullString

		if err := rows.Scan(
			&link.ItemID,
			&link.BranchID,
			&link.IsAvailable,
			&priceOverride,
			&providerID,
			&district,
			&city,
		); err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan availability link", err)
		}

		if priceOverride.Valid {
			v := priceOverride.Float64
			link.PriceOverride = &v
		}
		link.Branch = entities.Branch{
			ID:         link.BranchID,
			ProviderID: providerID.String,
			District:   district.String,
			City:       city.String,
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read availability links", err)
	}

	return links, nil
}

// FindSuggestionCandidates retrieves the autocomplete candidates
func (a *CatalogAdapter) FindSuggestionCandidates(ctx context.Context, q repositories.SuggestionQuery) ([]*entities.CatalogItem, error) {
	ds := a.db.From(catalogItemsTable).Prepared(true).Select(itemColumns...)

	if q.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(q.Status)))
	}
	if q.BookableOnly {
		ds = ds.Where(goqu.C("is_bookable").IsTrue())
	}

	ds = ds.Where(goqu.Or(
		goqu.C("name").ILike(escapeLike(q.Raw)+"%"),
		goqu.C("name").ILike(containsPattern(q.Raw)),
		goqu.C("keywords").ILike(containsPattern(q.Normalized)),
	))

	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	return a.queryItems(ctx, "find_suggestion_candidates", ds)
}

// ListItems pages through catalog items ordered by id
func (a *CatalogAdapter) ListItems(ctx context.Context, filter repositories.ListFilter) ([]*entities.CatalogItem, error) {
	ds := a.db.From(catalogItemsTable).Prepared(true).Select(itemColumns...)

	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}

	ds = ds.Order(goqu.C("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.queryItems(ctx, "list_items", ds)
}

func (a *CatalogAdapter) queryItems(ctx context.Context, operation string, ds *goqu.SelectDataset) ([]*entities.CatalogItem, error) {
	start := time.Now()
	defer func() { observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start)) }()

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build catalog query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to query catalog items", err)
	}
	defer rows.Close()

	items := []*entities.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan catalog item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read catalog items", err)
	}

	return items, nil
}

func scanCatalogItem(rows *sql.Rows) (*entities.CatalogItem, error) {
	item := &entities.CatalogItem{}
	var keywords, shortDescription, description, category sql.NullString
	var discountPrice sql.NullFloat64
	var kind, status string
	var tieredPricing []byte

	err := rows.Scan(
		&item.ID,
		&item.Name,
		&keywords,
		&shortDescription,
		&description,
		&item.Price,
		&discountPrice,
		&kind,
		&category,
		&item.IsBookable,
		&tieredPricing,
		&item.ProviderID,
		&status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Keywords = keywords.String
	item.ShortDescription = shortDescription.String
	item.Description = description.String
	item.Category = category.String
	item.Kind = entities.ItemKind(kind)
	item.Status = entities.ItemStatus(status)
	if discountPrice.Valid {
		v := discountPrice.Float64
		item.DiscountPrice = &v
	}
	if len(tieredPricing) > 0 {
		item.TieredPricing = append([]byte(nil), tieredPricing...)
	}

	return item, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}
