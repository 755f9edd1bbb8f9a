package domain

import (
	"context"
)

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	// Save stores a new product and returns the stored entity
	Save(ctx context.Context, product *Product) (*Product, error)
	// FindOne returns nil, nil when no product has the given id
	FindOne(ctx context.Context, id string) (*Product, error)
	// FindAll returns the page of products matching pred
	FindAll(ctx context.Context, pred Predicate, page PageRequest) (*Page, error)
}
