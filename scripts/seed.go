package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/catalogsearch/internal/adapters/memory"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	logo_url TEXT
);

CREATE TABLE IF NOT EXISTS branches (
	id          TEXT PRIMARY KEY,
	provider_id TEXT NOT NULL REFERENCES providers(id),
	district    TEXT,
	city        TEXT
);

CREATE TABLE IF NOT EXISTS catalog_items (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	keywords          TEXT,
	short_description TEXT,
	description       TEXT,
	price             DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_price    DOUBLE PRECISION,
	service_type      TEXT NOT NULL DEFAULT 'atomic',
	category          TEXT,
	is_bookable       BOOLEAN NOT NULL DEFAULT FALSE,
	tiered_pricing    JSONB,
	provider_id       TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'active',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS availability_links (
	item_id        TEXT NOT NULL REFERENCES catalog_items(id),
	branch_id      TEXT NOT NULL REFERENCES branches(id),
	is_available   BOOLEAN NOT NULL DEFAULT TRUE,
	price_override DOUBLE PRECISION,
	PRIMARY KEY (item_id, branch_id)
);

CREATE INDEX IF NOT EXISTS idx_catalog_items_status ON catalog_items(status);
CREATE INDEX IF NOT EXISTS idx_availability_links_item ON availability_links(item_id);
`

func main() {
	fixturePath := flag.String("fixture", "testdata/catalog.json", "catalog fixture to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("catalog-seed", cfg.Environment)

	fixture, err := memory.ReadFixture(*fixturePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read fixture")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				availability_links,
				catalog_items,
				branches,
				providers
			CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	db := goqu.New("postgres", pgClient.DB())
	now := time.Now().UTC()

	for _, p := range fixture.Providers {
		exec(ctx, db.Insert("providers").
			Rows(goqu.Record{"id": p.ID, "name": p.Name, "logo_url": nullable(p.LogoURL)}).
			OnConflict(goqu.DoNothing()), "provider", p.ID)
	}

	for _, b := range fixture.Branches {
		exec(ctx, db.Insert("branches").
			Rows(goqu.Record{"id": b.ID, "provider_id": b.ProviderID, "district": b.District, "city": b.City}).
			OnConflict(goqu.DoNothing()), "branch", b.ID)
	}

	for i, item := range fixture.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			// earlier entries are newer so retrieval order matches the fixture
			createdAt = now.Add(-time.Duration(i) * time.Second)
		}
		exec(ctx, db.Insert("catalog_items").Rows(itemRecord(item, createdAt)).
			OnConflict(goqu.DoNothing()), "catalog item", item.ID)
	}

	for _, l := range fixture.Links {
		exec(ctx, db.Insert("availability_links").
			Rows(goqu.Record{
				"item_id":        l.ItemID,
				"branch_id":      l.BranchID,
				"is_available":   l.IsAvailable,
				"price_override": l.PriceOverride,
			}).
			OnConflict(goqu.DoNothing()), "availability link", l.ItemID+"/"+l.BranchID)
	}

	log.Info().
		Int("providers", len(fixture.Providers)).
		Int("branches", len(fixture.Branches)).
		Int("items", len(fixture.Items)).
		Int("links", len(fixture.Links)).
		Msg("seeding complete")
}

func itemRecord(item *entities.CatalogItem, createdAt time.Time) goqu.Record {
	var tiered interface{}
	if len(item.TieredPricing) > 0 {
		tiered = string(item.TieredPricing)
	}
	status := item.Status
	if status == "" {
		status = entities.ItemStatusActive
	}
	return goqu.Record{
		"id":                item.ID,
		"name":              item.Name,
		"keywords":          item.Keywords,
		"short_description": nullable(item.ShortDescription),
		"description":       nullable(item.Description),
		"price":             item.Price,
		"discount_price":    item.DiscountPrice,
		"service_type":      string(item.Kind),
		"category":          nullable(item.Category),
		"is_bookable":       item.IsBookable,
		"tiered_pricing":    tiered,
		"provider_id":       item.ProviderID,
		"status":            string(status),
		"created_at":        createdAt,
		"updated_at":        createdAt,
	}
}

func exec(ctx context.Context, ds *goqu.InsertDataset, kind, id string) {
	if _, err := ds.Executor().ExecContext(ctx); err != nil {
		log.Fatal().Err(err).Str("kind", kind).Str("id", id).Msg("failed to insert")
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
