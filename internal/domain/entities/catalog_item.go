package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ItemKind distinguishes single services from bundles
type ItemKind string

const (
	ItemKindAtomic  ItemKind = "atomic"
	ItemKindPackage ItemKind = "package"
)

// ItemStatus is the publication state of a catalog item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
	ItemStatusDraft    ItemStatus = "draft"
)

// CatalogItem represents a purchasable healthcare service or package
type CatalogItem struct {
	ID               string          `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Keywords         string          `json:"keywords" db:"keywords"` // comma separated free-text tags
	ShortDescription string          `json:"short_description,omitempty" db:"short_description"`
	Description      string          `json:"description,omitempty" db:"description"`
	Price            float64         `json:"price" db:"price"`
	DiscountPrice    *float64        `json:"discount_price,omitempty" db:"discount_price"`
	Kind             ItemKind        `json:"service_type" db:"service_type"`
	Category         string          `json:"category,omitempty" db:"category"`
	IsBookable       bool            `json:"is_bookable" db:"is_bookable"`
	TieredPricing    json.RawMessage `json:"tiered_pricing,omitempty" db:"tiered_pricing"`
	ProviderID       string          `json:"provider_id" db:"provider_id"`
	Status           ItemStatus      `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPackage reports whether the item is a bundle of services
func (c *CatalogItem) IsPackage() bool {
	return c.Kind == ItemKindPackage
}

// HasTieredPricing reports whether the item carries any tiered pricing data.
// An absent document, JSON null and empty objects or arrays count as none.
func (c *CatalogItem) HasTieredPricing() bool {
	trimmed := bytes.TrimSpace(c.TieredPricing)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return false
	}
	return true
}

// KeywordList splits the keyword field into trimmed, non-empty tags
func (c *CatalogItem) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(c.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// DescriptionText joins the short and long descriptions for matching
func (c *CatalogItem) DescriptionText() string {
	switch {
	case c.ShortDescription == "":
		return c.Description
	case c.Description == "":
		return c.ShortDescription
	}
	return c.ShortDescription + " " + c.Description
}

// Provider represents a clinic or lab brand that owns catalog items
type Provider struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	LogoURL string `json:"logo_url,omitempty" db:"logo_url"`
}

// Branch represents a physical location of a provider
type Branch struct {
	ID         string `json:"id" db:"id"`
	ProviderID string `json:"provider_id" db:"provider_id"`
	District   string `json:"district" db:"district"`
	City       string `json:"city" db:"city"`
}

// AvailabilityLink records that a catalog item can be fulfilled at a branch
type AvailabilityLink struct {
	ItemID        string   `json:"item_id" db:"item_id"`
	BranchID      string   `json:"branch_id" db:"branch_id"`
	IsAvailable   bool     `json:"is_available" db:"is_available"`
	PriceOverride *float64 `json:"price_override,omitempty" db:"price_override"`
	Branch        Branch   `json:"branch" db:"-"`
}
