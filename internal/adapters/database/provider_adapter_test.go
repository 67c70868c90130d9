package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/adapters/cache"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

func TestProviderAdapter_GetByIDs(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewProviderAdapter(client, nil)

	mock.ExpectQuery(`SELECT "id", "name", "logo_url" FROM "providers" WHERE \("id" IN \(\$1, \$2\)\)`).
		WithArgs("p1", "p2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "logo_url"}).
			AddRow("p1", "Medlatec", "https://cdn.example.com/medlatec.png").
			AddRow("p2", "Diag", nil))

	providers, err := adapter.GetByIDs(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "Medlatec", providers[0].Name)
	assert.Empty(t, providers[1].LogoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_GetByIDs_Empty(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewProviderAdapter(client, nil)

	providers, err := adapter.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, providers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_GetByIDs_StoreError(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewProviderAdapter(client, nil)

	mock.ExpectQuery(`FROM "providers"`).WillReturnError(errors.New("broken pipe"))

	_, err := adapter.GetByIDs(context.Background(), []string{"p1"})
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestCachedProviderAdapter_ReadThrough(t *testing.T) {
	client, mock := setupMockDB(t)
	memCache := cache.NewMemoryAdapter()
	adapter := NewCachedProviderAdapter(NewProviderAdapter(client, nil), memCache, 60, nil)
	ctx := context.Background()

	mock.ExpectQuery(`FROM "providers"`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "logo_url"}).AddRow("p1", "Medlatec", nil))

	first, err := adapter.GetByIDs(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// second lookup is served from cache; no further query is expected
	second, err := adapter.GetByIDs(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Medlatec", second[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProviderAdapter_FetchesOnlyMissing(t *testing.T) {
	client, mock := setupMockDB(t)
	memCache := cache.NewMemoryAdapter()
	adapter := NewCachedProviderAdapter(NewProviderAdapter(client, nil), memCache, 60, nil)
	ctx := context.Background()

	require.NoError(t, memCache.Set(ctx, providerCacheKey("p1"), []byte(`{"id":"p1","name":"Cached"}`), 60))

	mock.ExpectQuery(`FROM "providers"`).
		WithArgs("p2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "logo_url"}).AddRow("p2", "Fresh", nil))

	providers, err := adapter.GetByIDs(ctx, []string{"p1", "p2"})
	require.NoError(t, err)

	names := map[string]string{}
	for _, p := range providers {
		names[p.ID] = p.Name
	}
	assert.Equal(t, map[string]string{"p1": "Cached", "p2": "Fresh"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProviderAdapter_PropagatesStoreError(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCachedProviderAdapter(NewProviderAdapter(client, nil), cache.NewMemoryAdapter(), 60, nil)

	mock.ExpectQuery(`FROM "providers"`).WillReturnError(errors.New("down"))

	_, err := adapter.GetByIDs(context.Background(), []string{"p1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}
