// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: <userId>_<YYYY-MM-DD> ✅ (docId is the source of truth for the
//   (user, day) key, so per-key uniqueness needs no query-then-check)
// - fields: userId, date, items(array), totalQuantity, createdAt, updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Get returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) Get(ctx context.Context, userID, day string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	docID := cartdom.DocID(userID, day)
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(day) == "" {
		return nil, errors.New("cart_repository_fs: userID and day are required")
	}

	snap, err := r.col().Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return cartFromSnapshot(snap)
}

// Upsert overwrites the full cart doc (simple & predictable; no partial writes).
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.ID as docId")
	}

	_, err := r.col().Doc(c.ID).Set(ctx, cartDocFromDomain(c))
	return err
}

// Delete removes the cart doc. Deleting a missing doc is not an error.
func (r *CartRepositoryFS) Delete(ctx context.Context, userID, day string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	_, err := r.col().Doc(cartdom.DocID(userID, day)).Delete(ctx)
	return err
}

// Mutate runs fn against the current cart state inside one Firestore
// transaction, so concurrent mutations of the same (user, day) key are
// serialized by optimistic concurrency instead of last-write-wins.
// fn returning (nil, nil) deletes the doc.
func (r *CartRepositoryFS) Mutate(ctx context.Context, userID, day string, fn func(current *cartdom.Cart) (*cartdom.Cart, error)) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(day) == "" {
		return errors.New("cart_repository_fs: userID and day are required")
	}

	ref := r.col().Doc(cartdom.DocID(userID, day))

	err := r.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		current, err := cartFromTxGet(tx, ref)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			if current == nil {
				return nil // nothing to delete
			}
			return tx.Delete(ref)
		}
		return tx.Set(ref, cartDocFromDomain(next))
	})
	return mapTxError(err)
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

// cartDoc keeps the stored shape decoupled from the domain struct.
type cartDoc struct {
	UserID        string        `firestore:"userId"`
	Date          string        `firestore:"date"`
	Items         []cartItemDoc `firestore:"items"`
	TotalQuantity int           `firestore:"totalQuantity"`
	CreatedAt     time.Time     `firestore:"createdAt"`
	UpdatedAt     time.Time     `firestore:"updatedAt"`
}

type cartItemDoc struct {
	ProductID   string `firestore:"productId"`
	CategoryID  string `firestore:"categoryId"`
	ProductCode string `firestore:"productCode"`
	VariantName string `firestore:"variantName"`
	Quantity    int    `firestore:"quantity"`
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, cartItemDoc{
			ProductID:   it.ProductID,
			CategoryID:  it.CategoryID,
			ProductCode: it.ProductCode,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
		})
	}
	return cartDoc{
		UserID:        c.UserID,
		Date:          c.Date,
		Items:         items,
		TotalQuantity: c.TotalQuantity,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (d cartDoc) toDomain(docID string) *cartdom.Cart {
	items := make([]cartdom.Item, 0, len(d.Items))
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, cartdom.Item{
			ProductID:   it.ProductID,
			CategoryID:  it.CategoryID,
			ProductCode: it.ProductCode,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
		})
	}
	return &cartdom.Cart{
		// ✅ docId is the source of truth even if the doc carries no id field
		ID:            docID,
		UserID:        d.UserID,
		Date:          d.Date,
		Items:         items,
		TotalQuantity: d.TotalQuantity,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func cartFromSnapshot(snap *firestore.DocumentSnapshot) (*cartdom.Cart, error) {
	var d cartDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toDomain(snap.Ref.ID), nil
}

// cartFromTxGet reads a cart doc inside a transaction; (nil, nil) when absent.
func cartFromTxGet(tx *firestore.Transaction, ref *firestore.DocumentRef) (*cartdom.Cart, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return cartFromSnapshot(snap)
}

// mapTxError normalizes exhausted optimistic-concurrency retries to ErrConflict.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Aborted, codes.FailedPrecondition:
		return ErrConflict
	}
	return err
}
