package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nextgen-storefront/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCatalogFailed   = errors.New("failed to fetch products")
)

type Service interface {
	Catalog(ctx context.Context, filter Filter) (*Catalog, error)
	Get(ctx context.Context, id string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Catalog lists the filtered products. Brand and category choices are
// computed from the unfiltered list so a filter never hides its siblings.
func (s *service) Catalog(ctx context.Context, filter Filter) (*Catalog, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}

	return &Catalog{
		Products:   Apply(all, filter),
		Brands:     Brands(all),
		Categories: Categories(all),
	}, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// Apply keeps products matching the brand exactly and the category
// case-insensitively. Empty or "All" disables a filter.
func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if active(f.Brand) && p.Brand != f.Brand {
			continue
		}
		if active(f.Category) && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func active(v string) bool {
	return v != "" && v != FilterAll
}

func Brands(products []Product) []string {
	return distinct(products, func(p Product) string {
		if p.Brand == UnknownBrand {
			return ""
		}
		return p.Brand
	})
}

func Categories(products []Product) []string {
	return distinct(products, func(p Product) string { return p.Category })
}

func distinct(products []Product, field func(Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
