package evaluation

import "time"

// Category groups golden queries by the matching behaviour they exercise.
type Category string

const (
	CategoryExactName  Category = "exact_name"  // e.g., "khám tổng quát"
	CategoryAccentFree Category = "accent_free" // e.g., "xet nghiem mau"
	CategoryKeyword    Category = "keyword"     // matched through keywords only
	CategoryLocation   Category = "location"    // district/city constrained
)

// ValidCategories returns all valid category values.
func ValidCategories() []Category {
	return []Category{CategoryExactName, CategoryAccentFree, CategoryKeyword, CategoryLocation}
}

// IsValid checks if the category value is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryExactName, CategoryAccentFree, CategoryKeyword, CategoryLocation:
		return true
	}
	return false
}

// GoldenQuery is a labeled search request with the catalog items it should surface.
type GoldenQuery struct {
	ID          string   `json:"id"`
	Query       string   `json:"query"`
	District    string   `json:"district,omitempty"`
	City        string   `json:"city,omitempty"`
	Category    Category `json:"category"`
	ExpectedIDs []string `json:"expected_ids"`
	Difficulty  string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID      string        `json:"query_id"`
	Query        string        `json:"query"`
	Category     Category      `json:"category"`
	Recall       float64       `json:"recall"`
	MRR          float64       `json:"mrr"`
	ResultCount  int           `json:"result_count"`
	RetrievedIDs []string      `json:"retrieved_ids"`
	Latency      time.Duration `json:"latency"`
	Err          string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	K               int                           `json:"k"`
	TotalQueries    int                           `json:"total_queries"`
	FailedQueries   int                           `json:"failed_queries"`
	AvgRecall       float64                       `json:"avg_recall"`
	AvgMRR          float64                       `json:"avg_mrr"`
	AvgLatency      time.Duration                 `json:"avg_latency"`
	QueriesWithHits int                           `json:"queries_with_hits"` // at least 1 result
	ByCategory      map[Category]*CategorySummary `json:"by_category"`
	Results         []EvalResult                  `json:"results"`
}

// CategorySummary holds metrics grouped by query category.
type CategorySummary struct {
	Count     int     `json:"count"`
	AvgRecall float64 `json:"avg_recall"`
	AvgMRR    float64 `json:"avg_mrr"`
}
