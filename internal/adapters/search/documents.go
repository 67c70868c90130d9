package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/pkg/textnorm"
)

// ItemDocument converts a catalog item to its Typesense document
func ItemDocument(item *entities.CatalogItem) map[string]interface{} {
	doc := map[string]interface{}{
		"id":              item.ID,
		"name":            item.Name,
		"name_normalized": textnorm.Normalize(item.Name),
		"keywords":        item.Keywords,
		"price":           item.Price,
		"service_type":    string(item.Kind),
		"is_bookable":     item.IsBookable,
		"provider_id":     item.ProviderID,
		"status":          string(item.Status),
		"created_at":      item.CreatedAt.Unix(),
		"updated_at":      item.UpdatedAt.Unix(),
	}
	if item.ShortDescription != "" {
		doc["short_description"] = item.ShortDescription
	}
	if item.Description != "" {
		doc["description"] = item.Description
	}
	if item.DiscountPrice != nil {
		doc["discount_price"] = *item.DiscountPrice
	}
	if item.Category != "" {
		doc["category"] = item.Category
	}
	if item.HasTieredPricing() {
		doc["tiered_pricing"] = string(item.TieredPricing)
	}
	return doc
}

// itemFromDocument rebuilds a catalog item from a search hit
func itemFromDocument(doc map[string]interface{}) *entities.CatalogItem {
	item := &entities.CatalogItem{
		ID:               stringField(doc, "id"),
		Name:             stringField(doc, "name"),
		Keywords:         stringField(doc, "keywords"),
		ShortDescription: stringField(doc, "short_description"),
		Description:      stringField(doc, "description"),
		Price:            floatField(doc, "price"),
		Kind:             entities.ItemKind(stringField(doc, "service_type")),
		Category:         stringField(doc, "category"),
		ProviderID:       stringField(doc, "provider_id"),
		Status:           entities.ItemStatus(stringField(doc, "status")),
		CreatedAt:        unixField(doc, "created_at"),
		UpdatedAt:        unixField(doc, "updated_at"),
	}
	if v, ok := doc["is_bookable"].(bool); ok {
		item.IsBookable = v
	}
	if _, ok := doc["discount_price"]; ok {
		v := floatField(doc, "discount_price")
		item.DiscountPrice = &v
	}
	if tiers := stringField(doc, "tiered_pricing"); tiers != "" {
		item.TieredPricing = json.RawMessage(tiers)
	}
	return item
}

func stringField(doc map[string]interface{}, key string) string {
	v, _ := doc[key].(string)
	return v
}

// numbers arrive as float64 from encoding/json
func floatField(doc map[string]interface{}, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func unixField(doc map[string]interface{}, key string) time.Time {
	secs := int64(floatField(doc, key))
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// quoteFilterValue wraps a value in backticks so commas and operators in it
// are taken literally by filter_by.
func quoteFilterValue(v string) string {
	return "`" + strings.ReplaceAll(v, "`", "") + "`"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// buildItemFilter renders the structural predicates of q as filter_by
func buildItemFilter(q repositories.ItemQuery) string {
	var clauses []string
	if q.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status:=%s", quoteFilterValue(string(q.Status))))
	}
	if q.ProviderID != "" {
		clauses = append(clauses, fmt.Sprintf("provider_id:=%s", quoteFilterValue(q.ProviderID)))
	}
	if q.Kind != "" {
		clauses = append(clauses, fmt.Sprintf("service_type:=%s", quoteFilterValue(string(q.Kind))))
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "price:>="+formatFloat(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "price:<="+formatFloat(*q.MaxPrice))
	}
	return strings.Join(clauses, " && ")
}

// buildSuggestionFilter renders the non-text predicates of q as filter_by
func buildSuggestionFilter(q repositories.SuggestionQuery) string {
	var clauses []string
	if q.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status:=%s", quoteFilterValue(string(q.Status))))
	}
	if q.BookableOnly {
		clauses = append(clauses, "is_bookable:=true")
	}
	return strings.Join(clauses, " && ")
}
