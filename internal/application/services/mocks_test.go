package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

// Mocks

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindItems(ctx context.Context, query repositories.ItemQuery) ([]*entities.CatalogItem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) FindAvailabilityLinks(ctx context.Context, itemIDs []string, availableOnly bool) ([]*entities.AvailabilityLink, error) {
	args := m.Called(ctx, itemIDs, availableOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AvailabilityLink), args.Error(1)
}

func (m *MockCatalogRepository) FindSuggestionCandidates(ctx context.Context, query repositories.SuggestionQuery) ([]*entities.CatalogItem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) ListItems(ctx context.Context, filter repositories.ListFilter) ([]*entities.CatalogItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CatalogItem), args.Error(1)
}

type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Provider), args.Error(1)
}
