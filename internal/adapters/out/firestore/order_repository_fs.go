// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// Collection design:
// - collection: orders
// - docId: generated (orders outlive the (user, day) key: Place creates
//   detached docs, so the key cannot be the id)
// - fields: userId, date, items(array), totalQuantity, status, note,
//   createdAt, updatedAt
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) carts() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetByID returns (nil, nil) if not found (nil policy).
func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(id)
	if oid == "" {
		return nil, errors.New("order_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(oid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return orderFromSnapshot(snap)
}

// GetByUserAndDay returns the submit-flow order for (userID, day), (nil, nil)
// when absent.
func (r *OrderRepositoryFS) GetByUserAndDay(ctx context.Context, userID, day string) (*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	it := r.userDayQuery(userID, day).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return orderFromSnapshot(snap)
}

// Upsert overwrites the full order doc.
func (r *OrderRepositoryFS) Upsert(ctx context.Context, o *orderdom.Order) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	if o == nil || strings.TrimSpace(o.ID) == "" {
		return errors.New("order_repository_fs: order with ID is required")
	}

	_, err := r.col().Doc(o.ID).Set(ctx, orderDocFromDomain(o))
	return err
}

// Delete removes the order doc. Firestore treats deleting a missing doc as
// a no-op, which matches the port contract.
func (r *OrderRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(id)
	if oid == "" {
		return errors.New("order_repository_fs: id is empty")
	}

	_, err := r.col().Doc(oid).Delete(ctx)
	return err
}

// List returns orders matching f, newest createdAt first.
// Sorting happens in memory so filter combinations need no composite indexes.
func (r *OrderRepositoryFS) List(ctx context.Context, f orderdom.Filter) ([]*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	q := r.col().Query
	if uid := strings.TrimSpace(f.UserID); uid != "" {
		q = q.Where("userId", "==", uid)
	}
	if day := strings.TrimSpace(f.Date); day != "" {
		q = q.Where("date", "==", day)
	}
	if f.Status != nil {
		q = q.Where("status", "==", int(*f.Status))
	}

	it := q.Documents(ctx)
	defer it.Stop()

	out := []*orderdom.Order{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := orderFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// NewID allocates a fresh docId without writing anything.
func (r *OrderRepositoryFS) NewID() string {
	return r.col().NewDoc().ID
}

// SubmitCart runs the cart->order submission as one Firestore transaction:
// the (userID, day) cart and order are read, build decides the resulting
// order, then the order write and the cart delete commit together. A retry
// after contention re-reads everything, so quantities cannot be applied twice.
func (r *OrderRepositoryFS) SubmitCart(ctx context.Context, userID, day string, build func(existing *orderdom.Order, c *cartdom.Cart) (*orderdom.Order, error)) (*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	d := strings.TrimSpace(day)
	if uid == "" || d == "" {
		return nil, errors.New("order_repository_fs: userID and day are required")
	}

	cartRef := r.carts().Doc(cartdom.DocID(uid, d))

	var result *orderdom.Order
	err := r.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		result = nil // reset on transaction retry

		// all reads happen before any write
		c, err := cartFromTxGet(tx, cartRef)
		if err != nil {
			return err
		}

		var existing *orderdom.Order
		it := tx.Documents(r.userDayQuery(uid, d))
		snap, err := it.Next()
		it.Stop()
		if err != nil && err != iterator.Done {
			return err
		}
		if err == nil {
			existing, err = orderFromSnapshot(snap)
			if err != nil {
				return err
			}
		}

		next, err := build(existing, c)
		if err != nil {
			return err
		}

		if err := tx.Set(r.col().Doc(next.ID), orderDocFromDomain(next)); err != nil {
			return err
		}
		if c != nil {
			if err := tx.Delete(cartRef); err != nil {
				return err
			}
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, mapTxError(err)
	}
	return result, nil
}

func (r *OrderRepositoryFS) userDayQuery(userID, day string) firestore.Query {
	return r.col().
		Where("userId", "==", strings.TrimSpace(userID)).
		Where("date", "==", strings.TrimSpace(day)).
		Limit(1)
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type orderDoc struct {
	UserID        string         `firestore:"userId"`
	Date          string         `firestore:"date"`
	Items         []orderItemDoc `firestore:"items"`
	TotalQuantity int            `firestore:"totalQuantity"`
	Status        int            `firestore:"status"`
	Note          string         `firestore:"note"`
	CreatedAt     time.Time      `firestore:"createdAt"`
	UpdatedAt     time.Time      `firestore:"updatedAt"`
}

type orderItemDoc struct {
	ProductCode string `firestore:"productCode"`
	VariantName string `firestore:"variantName"`
	Quantity    int    `firestore:"quantity"`
}

func orderDocFromDomain(o *orderdom.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, orderItemDoc{
			ProductCode: it.ProductCode,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
		})
	}
	return orderDoc{
		UserID:        o.UserID,
		Date:          o.Date,
		Items:         items,
		TotalQuantity: o.TotalQuantity,
		Status:        int(o.Status),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func orderFromSnapshot(snap *firestore.DocumentSnapshot) (*orderdom.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}

	items := make([]orderdom.Item, 0, len(d.Items))
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, orderdom.Item{
			ProductCode: it.ProductCode,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
		})
	}

	return &orderdom.Order{
		ID:            snap.Ref.ID,
		UserID:        d.UserID,
		Date:          d.Date,
		Items:         items,
		TotalQuantity: d.TotalQuantity,
		Status:        orderdom.Status(d.Status),
		Note:          d.Note,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}
