package query

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	cartdom "storefront/internal/domain/cart"
)

// day1Clock pins Now to the fixture day.
type day1Clock struct{}

func (day1Clock) Now() time.Time { return day1 }

// memCarts is a read-only cart.Repository fake for view tests.
type memCarts struct {
	docs map[string]*cartdom.Cart
}

func (r *memCarts) Get(_ context.Context, userID, day string) (*cartdom.Cart, error) {
	return r.docs[cartdom.DocID(userID, day)], nil
}

func (r *memCarts) Upsert(_ context.Context, c *cartdom.Cart) error {
	r.docs[c.ID] = c
	return nil
}

func (r *memCarts) Delete(_ context.Context, userID, day string) error {
	delete(r.docs, cartdom.DocID(userID, day))
	return nil
}

func (r *memCarts) Mutate(_ context.Context, _, _ string, _ func(*cartdom.Cart) (*cartdom.Cart, error)) error {
	return errors.New("not used in query tests")
}

func seedCartDoc(t *testing.T, carts *memCarts) {
	t.Helper()
	c, err := cartdom.NewCart("u1", "2025-06-02", day1)
	if err != nil {
		t.Fatalf("NewCart: %v", err)
	}
	for _, it := range []struct {
		code, variant string
		qty           int
	}{
		{"1005", "A", 3},
		{"1005", "B", 2},
		{"1006", "C", 6},
	} {
		if err := c.ApplyDelta("p"+it.code, "cat1", it.code, it.variant, it.qty, day1); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := carts.Upsert(context.Background(), c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
}

func TestCartView(t *testing.T) {
	carts := &memCarts{docs: map[string]*cartdom.Cart{}}
	seedCartDoc(t, carts)
	q := NewCartQueryWithClock(carts, fixtureCatalog(), day1Clock{})

	view, warnings, err := q.View(context.Background(), "u1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if view.TotalQuantity != 11 || len(view.Products) != 2 {
		t.Fatalf("view = %+v", view)
	}

	// first-seen product order, zero-filled catalog variants
	if view.Products[0].ProductCode != "1005" || view.Products[0].ProductName != "Classic Shirt" {
		t.Fatalf("product[0] = %+v", view.Products[0])
	}
	wantA := []VariantQuantity{{Name: "A", Quantity: 3}, {Name: "B", Quantity: 2}}
	if !reflect.DeepEqual(view.Products[0].Variants, wantA) {
		t.Fatalf("1005 variants = %+v", view.Products[0].Variants)
	}
	wantC := []VariantQuantity{{Name: "C", Quantity: 6}, {Name: "D", Quantity: 0}, {Name: "E", Quantity: 0}}
	if !reflect.DeepEqual(view.Products[1].Variants, wantC) {
		t.Fatalf("1006 variants = %+v", view.Products[1].Variants)
	}
}

func TestCartViewNotFound(t *testing.T) {
	q := NewCartQueryWithClock(&memCarts{docs: map[string]*cartdom.Cart{}}, fixtureCatalog(), day1Clock{})
	if _, _, err := q.View(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, _, err := q.View(context.Background(), " "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
