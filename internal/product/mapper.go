package product

import (
	"strings"

	"nextgen-storefront/internal/backend"

	"github.com/shopspring/decimal"
)

// FromRecord normalizes a backend product. Records without an identifier
// get brand-model, which is also their identity inside a cart.
func FromRecord(r backend.ProductRecord) Product {
	model := firstNonEmpty(r.Model, r.Name, r.ProductName)

	id := firstNonEmpty(r.MongoID.String(), r.ID.String())
	if id == "" {
		id = firstNonEmpty(r.Brand, "unknown") + "-" + firstNonEmpty(model, "item")
	}

	price := r.Price
	if price.IsNegative() {
		price = decimal.Zero
	}

	return Product{
		ID:       id,
		Brand:    firstNonEmpty(r.Brand, UnknownBrand),
		Model:    firstNonEmpty(model, UnknownModel),
		Price:    price,
		Image:    firstNonEmpty(r.ImageURL, r.Image),
		Category: strings.TrimSpace(r.Category),
		Specs:    r.Specs,
	}
}

func FromRecords(records []backend.ProductRecord) []Product {
	out := make([]Product, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
