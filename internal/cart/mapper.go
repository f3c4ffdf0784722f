package cart

import (
	"nextgen-storefront/internal/product"
)

func FromProduct(p product.Product) Item {
	return Item{
		ID:       p.ID,
		Brand:    p.Brand,
		Model:    p.Model,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	}
}

// sanitize enforces the line invariants on data read back from storage:
// items need an id and a non-negative price, quantities floor at 1, and a
// repeated id folds into its first occurrence.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" || it.Price.IsNegative() {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if at, ok := index[it.ID]; ok {
			out[at].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
