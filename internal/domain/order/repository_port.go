// internal/domain/order/repository_port.go
package order

import (
	"context"

	cartdom "storefront/internal/domain/cart"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	UserID string
	Date   string
	Status *Status
}

// Repository abstracts order persistence.
//
// Nil policy: GetByID / GetByUserAndDay return (nil, nil) when no doc matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserAndDay(ctx context.Context, userID, day string) (*Order, error)

	// Upsert overwrites the full order doc (docId = order.ID).
	Upsert(ctx context.Context, o *Order) error

	// Delete removes the order doc; deleting a missing doc is not an error.
	Delete(ctx context.Context, id string) error

	// List returns orders matching f, newest createdAt first.
	List(ctx context.Context, f Filter) ([]*Order, error)

	// NewID allocates a fresh order docId without writing anything.
	NewID() string

	// SubmitCart runs the cart->order submission as one storage transaction:
	// it reads the (userID, day) cart and order, calls build with both
	// (either may be nil), persists the returned order and deletes the cart.
	// A build error aborts the transaction with nothing written.
	SubmitCart(ctx context.Context, userID, day string, build func(existing *Order, c *cartdom.Cart) (*Order, error)) (*Order, error)
}
