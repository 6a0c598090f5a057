// internal/domain/catalog/repository_port.go
package catalog

import "context"

// Repository is the read-only catalog port.
//
// Nil policy: lookups return (nil, nil) when no record matches.
type Repository interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductByCode(ctx context.Context, code string) (*Product, error)

	// ProductsByCodes resolves a batch of product codes in one round trip.
	// Missing codes are simply absent from the result map.
	ProductsByCodes(ctx context.Context, codes []string) (map[string]*Product, error)

	GetCategory(ctx context.Context, id string) (*Category, error)
}
