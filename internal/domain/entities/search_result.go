package entities

// ScoredItem is a candidate paired with its relevance score for one request
type ScoredItem struct {
	Item  *CatalogItem
	Score int
}

// SearchResultItem is a ranked catalog item as returned to callers
type SearchResultItem struct {
	*CatalogItem
	Provider *Provider `json:"provider,omitempty"`
	Score    *int      `json:"score,omitempty"`
}

// SearchResult is the outcome of one catalog search
type SearchResult struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Query *string            `json:"query"`
}

// Suggestion is an autocomplete entry projected from a catalog item
type Suggestion struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kind         ItemKind `json:"service_type"`
	Category     string   `json:"category,omitempty"`
	ProviderName string   `json:"provider_name,omitempty"`
	Price        float64  `json:"price"`
}
