package product

import "github.com/shopspring/decimal"

const (
	UnknownBrand = "Unknown Brand"
	UnknownModel = "Unknown Model"

	// FilterAll disables a filter, as the catalog's "All" option does.
	FilterAll = "All"
)

// Product is the canonical catalog record. Backend field variants are
// resolved by the mapper; nothing past this package sees them.
type Product struct {
	ID       string          `json:"id"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
	Specs    map[string]any  `json:"specs,omitempty"`
}

type Filter struct {
	Brand    string
	Category string
}

type Catalog struct {
	Products   []Product `json:"products"`
	Brands     []string  `json:"brands"`
	Categories []string  `json:"categories"`
}
