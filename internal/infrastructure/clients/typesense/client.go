package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/catalogsearch/pkg/config"
	"github.com/zatekoja/catalogsearch/pkg/retry"
)

// DefaultCatalogCollection is used when no collection name is configured
const DefaultCatalogCollection = "catalog_items"

// Client represents a Typesense client
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCatalogCollection
	}

	log.Info().Str("url", cfg.URL).Str("collection", collection).Msg("connected to typesense")
	return &Client{client: client, collection: collection}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the catalog collection name
func (c *Client) Collection() string {
	return c.collection
}

// CatalogSchema describes the catalog collection. Text fields allow infix
// matching so substring queries behave like the Postgres ILIKE retrieval.
func CatalogSchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string", Infix: pointer.True()},
			{Name: "name_normalized", Type: "string", Infix: pointer.True()},
			{Name: "keywords", Type: "string", Infix: pointer.True()},
			{Name: "short_description", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "description", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "price", Type: "float", Facet: pointer.True()},
			{Name: "discount_price", Type: "float", Optional: pointer.True()},
			{Name: "service_type", Type: "string", Facet: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "is_bookable", Type: "bool"},
			{Name: "tiered_pricing", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "provider_id", Type: "string", Facet: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "created_at", Type: "int64"},
			{Name: "updated_at", Type: "int64", Optional: pointer.True()},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
}

// InitSchema ensures the catalog collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			log.Debug().Str("collection", c.collection).Msg("typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, CatalogSchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", c.collection).Msg("created typesense collection")
	return nil
}

// DropCollection deletes the catalog collection
func (c *Client) DropCollection(ctx context.Context) error {
	if _, err := c.client.Collection(c.collection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}
