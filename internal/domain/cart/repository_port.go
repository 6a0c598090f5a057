// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository abstracts cart persistence.
//
// Nil policy: Get returns (nil, nil) when the doc does not exist.
type Repository interface {
	// Get loads the cart for (userID, day).
	Get(ctx context.Context, userID, day string) (*Cart, error)

	// Upsert overwrites the full cart doc (docId = cart.ID).
	Upsert(ctx context.Context, c *Cart) error

	// Delete removes the cart doc for (userID, day). Deleting a missing doc is not an error.
	Delete(ctx context.Context, userID, day string) error

	// Mutate runs fn against the current cart state inside one storage
	// transaction. fn receives nil when no cart exists and returns the state
	// to persist; returning (nil, nil) deletes the doc. Concurrent mutations
	// of the same (userID, day) key are serialized by the storage engine.
	Mutate(ctx context.Context, userID, day string, fn func(current *Cart) (*Cart, error)) error
}
