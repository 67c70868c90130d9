package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

// ProviderAdapter implements ProviderRepository
type ProviderAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.ProviderRepository {
	return &ProviderAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// GetByIDs retrieves multiple providers by their IDs
func (a *ProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}
	start := time.Now()
	defer func() { observability.RecordDBMetric(ctx, a.metrics, "get_providers", time.Since(start)) }()

	query, args, err := a.db.From(providersTable).Prepared(true).
		Select("id", "name", "logo_url").
		Where(goqu.C("id").In(ids)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to get providers by ids", err)
	}
	defer rows.Close()

	providers := []*entities.Provider{}
	for rows.Next() {
		provider := &entities.Provider{}
		var logo sql.NullString
		if err := rows.Scan(&provider.ID, &provider.Name, &logo); err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan provider", err)
		}
		provider.LogoURL = logo.String
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read providers", err)
	}

	return providers, nil
}
