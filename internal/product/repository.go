package product

import (
	"context"

	"nextgen-storefront/internal/backend"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
}

type repository struct {
	client backend.Client
}

func NewRepository(client backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	records, err := r.client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return FromRecords(records), nil
}
