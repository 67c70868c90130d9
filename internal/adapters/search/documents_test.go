package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

func TestItemDocumentRoundTrip(t *testing.T) {
	discount := 450000.0
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	item := &entities.CatalogItem{
		ID:               "i1",
		Name:             "Khám Tổng Quát",
		Keywords:         "kham benh,tong quat",
		ShortDescription: "Gói khám",
		Price:            500000,
		DiscountPrice:    &discount,
		Kind:             entities.ItemKindPackage,
		Category:         "checkup",
		IsBookable:       true,
		TieredPricing:    json.RawMessage(`[{"qty":2}]`),
		ProviderID:       "p1",
		Status:           entities.ItemStatusActive,
		CreatedAt:        created,
		UpdatedAt:        created,
	}

	doc := ItemDocument(item)
	assert.Equal(t, "kham tong quat", doc["name_normalized"])
	assert.NotContains(t, doc, "description")

	// simulate the JSON trip through the Typesense API
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got := itemFromDocument(decoded)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.Keywords, got.Keywords)
	assert.Equal(t, item.Price, got.Price)
	require.NotNil(t, got.DiscountPrice)
	assert.Equal(t, discount, *got.DiscountPrice)
	assert.Equal(t, item.Kind, got.Kind)
	assert.True(t, got.IsBookable)
	assert.True(t, got.HasTieredPricing())
	assert.Equal(t, created, got.CreatedAt)
}

func TestBuildItemFilter(t *testing.T) {
	minPrice, maxPrice := 100.0, 2500.5

	filter := buildItemFilter(repositories.ItemQuery{
		Status:     entities.ItemStatusActive,
		ProviderID: "p`1",
		Kind:       entities.ItemKindAtomic,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	})

	assert.Equal(t, "status:=`active` && provider_id:=`p1` && service_type:=`atomic` && price:>=100 && price:<=2500.5", filter)
	assert.Empty(t, buildItemFilter(repositories.ItemQuery{}))
}

func TestBuildSuggestionFilter(t *testing.T) {
	filter := buildSuggestionFilter(repositories.SuggestionQuery{
		Status:       entities.ItemStatusActive,
		BookableOnly: true,
	})

	assert.Equal(t, "status:=`active` && is_bookable:=true", filter)
}
