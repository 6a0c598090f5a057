package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	orderdom "storefront/internal/domain/order"
)

// memOrderRepo is an in-memory order.Repository sharing a cart store so
// SubmitCart can honor the "order written + cart deleted atomically" contract.
type memOrderRepo struct {
	carts  *memCartRepo
	orders map[string]*orderdom.Order
	nextID int
}

func newMemOrderRepo(carts *memCartRepo) *memOrderRepo {
	return &memOrderRepo{carts: carts, orders: map[string]*orderdom.Order{}}
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*orderdom.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]orderdom.Item(nil), o.Items...)
	return &cp, nil
}

func (r *memOrderRepo) GetByUserAndDay(_ context.Context, userID, day string) (*orderdom.Order, error) {
	for _, o := range r.orders {
		if o.UserID == userID && o.Date == day {
			cp := *o
			cp.Items = append([]orderdom.Item(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) Upsert(_ context.Context, o *orderdom.Order) error {
	cp := *o
	cp.Items = append([]orderdom.Item(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id string) error {
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) List(_ context.Context, f orderdom.Filter) ([]*orderdom.Order, error) {
	out := []*orderdom.Order{}
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Date != "" && o.Date != f.Date {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memOrderRepo) NewID() string {
	r.nextID++
	return fmt.Sprintf("order-%d", r.nextID)
}

func (r *memOrderRepo) SubmitCart(ctx context.Context, userID, day string, build func(*orderdom.Order, *cartdom.Cart) (*orderdom.Order, error)) (*orderdom.Order, error) {
	existing, _ := r.GetByUserAndDay(ctx, userID, day)
	c, _ := r.carts.Get(ctx, userID, day)

	o, err := build(existing, c)
	if err != nil {
		return nil, err
	}
	if err := r.Upsert(ctx, o); err != nil {
		return nil, err
	}
	if err := r.carts.Delete(ctx, userID, day); err != nil {
		return nil, err
	}
	return o, nil
}

func seedCartItems(t *testing.T, cartUC *CartUsecase, items map[string]int) {
	t.Helper()
	for variant, qty := range items {
		if _, _, err := cartUC.ApplyDelta(context.Background(), "u1", DeltaInput{
			ProductID: "p1", CategoryID: "cat1", ProductCode: "1005", VariantName: variant, Delta: qty,
		}); err != nil {
			t.Fatalf("seed %s: %v", variant, err)
		}
	}
}

func TestSubmitCreatesOrderAndDeletesCart(t *testing.T) {
	carts := newMemCartRepo()
	orders := newMemOrderRepo(carts)
	clock := fakeClock{day1}
	cartUC := NewCartUsecaseWithClock(carts, clock)
	orderUC := NewOrderUsecaseWithClock(orders, nil, clock)

	seedCartItems(t, cartUC, map[string]int{"A": 3, "B": 2})

	o, err := orderUC.Submit(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.Status != orderdom.StatusPending {
		t.Fatalf("status = %v", o.Status)
	}
	if o.TotalQuantity != 5 || len(o.Items) != 2 {
		t.Fatalf("order = %+v", o)
	}

	// cart consumed
	if _, err := cartUC.Get(context.Background(), "u1"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("cart still readable: err = %v", err)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	carts := newMemCartRepo()
	orderUC := NewOrderUsecaseWithClock(newMemOrderRepo(carts), nil, fakeClock{day1})

	if _, err := orderUC.Submit(context.Background(), "u1"); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
}

func TestSubmitMergesIntoSameDayOrder(t *testing.T) {
	// P3: second submission merges quantities, it does not duplicate lines.
	carts := newMemCartRepo()
	orders := newMemOrderRepo(carts)
	clock := fakeClock{day1}
	cartUC := NewCartUsecaseWithClock(carts, clock)
	orderUC := NewOrderUsecaseWithClock(orders, nil, clock)

	seedCartItems(t, cartUC, map[string]int{"A": 3})
	first, err := orderUC.Submit(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	seedCartItems(t, cartUC, map[string]int{"A": 2})
	second, err := orderUC.Submit(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("second submit created new order %s, want merge into %s", second.ID, first.ID)
	}
	if len(second.Items) != 1 || second.Items[0].Quantity != 5 || second.TotalQuantity != 5 {
		t.Fatalf("merged order = %+v", second)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("order count = %d", len(orders.orders))
	}
}

func TestPlaceNeverMerges(t *testing.T) {
	carts := newMemCartRepo()
	orders := newMemOrderRepo(carts)
	clock := fakeClock{day1}
	cartUC := NewCartUsecaseWithClock(carts, clock)
	orderUC := NewOrderUsecaseWithClock(orders, nil, clock)

	seedCartItems(t, cartUC, map[string]int{"A": 3})
	if _, err := orderUC.Submit(context.Background(), "u1"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	seedCartItems(t, cartUC, map[string]int{"A": 2})
	placed, err := orderUC.Place(context.Background(), "u1", "urgent")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if placed.Note != "urgent" {
		t.Fatalf("note = %q", placed.Note)
	}
	if placed.TotalQuantity != 2 {
		t.Fatalf("placed order total = %d, want 2 (no merge)", placed.TotalQuantity)
	}
	if len(orders.orders) != 2 {
		t.Fatalf("order count = %d, want 2 distinct orders", len(orders.orders))
	}
}

func TestUpdateStatus(t *testing.T) {
	carts := newMemCartRepo()
	orders := newMemOrderRepo(carts)
	clock := fakeClock{day1}
	cartUC := NewCartUsecaseWithClock(carts, clock)
	orderUC := NewOrderUsecaseWithClock(orders, nil, clock)

	seedCartItems(t, cartUC, map[string]int{"A": 3})
	o, err := orderUC.Submit(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	updated, err := orderUC.UpdateStatus(context.Background(), o.ID, int(orderdom.StatusDone))
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != orderdom.StatusDone {
		t.Fatalf("status = %v", updated.Status)
	}

	// backward write is allowed (permissive machine)
	if _, err := orderUC.UpdateStatus(context.Background(), o.ID, int(orderdom.StatusPending)); err != nil {
		t.Fatalf("backward UpdateStatus: %v", err)
	}

	// out-of-range code is a validation failure
	if _, err := orderUC.UpdateStatus(context.Background(), o.ID, 9); !errors.Is(err, ErrOrderInvalidArgument) {
		t.Fatalf("err = %v, want ErrOrderInvalidArgument", err)
	}

	// unknown order
	if _, err := orderUC.UpdateStatus(context.Background(), "nope", 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

// purgeCatalog is a minimal catalog.Repository for category resolution.
type purgeCatalog struct {
	products   map[string]*catalogdom.Product
	categories map[string]*catalogdom.Category
}

func (r *purgeCatalog) GetProductByID(_ context.Context, id string) (*catalogdom.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *purgeCatalog) GetProductByCode(_ context.Context, code string) (*catalogdom.Product, error) {
	return r.products[code], nil
}

func (r *purgeCatalog) ProductsByCodes(_ context.Context, codes []string) (map[string]*catalogdom.Product, error) {
	out := map[string]*catalogdom.Product{}
	for _, c := range codes {
		if p, ok := r.products[c]; ok {
			out[c] = p
		}
	}
	return out, nil
}

func (r *purgeCatalog) GetCategory(_ context.Context, id string) (*catalogdom.Category, error) {
	return r.categories[id], nil
}

func newPurgeCatalog() *purgeCatalog {
	return &purgeCatalog{
		products: map[string]*catalogdom.Product{
			"1005": {ID: "p1005", Code: "1005", Name: "Classic Shirt", CategoryID: "cat-apparel"},
			"1006": {ID: "p1006", Code: "1006", Name: "Denim Jacket", CategoryID: "cat-outerwear"},
		},
		categories: map[string]*catalogdom.Category{
			"cat-apparel":   {ID: "cat-apparel", Name: "Apparel"},
			"cat-outerwear": {ID: "cat-outerwear", Name: "Outerwear"},
		},
	}
}

func seedOrder(t *testing.T, orders *memOrderRepo, id, userID string, items ...orderdom.Item) {
	t.Helper()
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	err := orders.Upsert(context.Background(), &orderdom.Order{
		ID: id, UserID: userID, Date: "2025-06-02",
		Items: items, TotalQuantity: total,
		Status: orderdom.StatusPending, CreatedAt: day1, UpdatedAt: day1,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestDeleteByCategoryPurgesMatchingLines(t *testing.T) {
	orders := newMemOrderRepo(newMemCartRepo())
	orderUC := NewOrderUsecaseWithClock(orders, newPurgeCatalog(), fakeClock{day1})

	// o1 mixes categories, o2 is apparel only, o3 has no apparel at all
	seedOrder(t, orders, "o1", "u1",
		orderdom.Item{ProductCode: "1005", VariantName: "A", Quantity: 3},
		orderdom.Item{ProductCode: "1005", VariantName: "B", Quantity: 2},
		orderdom.Item{ProductCode: "1006", VariantName: "C", Quantity: 6})
	seedOrder(t, orders, "o2", "u2",
		orderdom.Item{ProductCode: "1005", VariantName: "A", Quantity: 1})
	seedOrder(t, orders, "o3", "u3",
		orderdom.Item{ProductCode: "1006", VariantName: "D", Quantity: 6})

	sum, err := orderUC.DeleteByCategory(context.Background(), "Apparel")
	if err != nil {
		t.Fatalf("DeleteByCategory: %v", err)
	}
	want := CategoryPurgeSummary{Category: "Apparel", DeletedOrders: 1, UpdatedOrders: 1, DeletedItems: 3}
	if *sum != want {
		t.Fatalf("summary = %+v, want %+v", *sum, want)
	}

	// o1 keeps only the outerwear line, total re-derived
	o1, _ := orders.GetByID(context.Background(), "o1")
	if o1 == nil || len(o1.Items) != 1 || o1.Items[0].ProductCode != "1006" || o1.TotalQuantity != 6 {
		t.Fatalf("o1 = %+v", o1)
	}

	// o2 lost its last line and is gone
	if o2, _ := orders.GetByID(context.Background(), "o2"); o2 != nil {
		t.Fatalf("o2 survived: %+v", o2)
	}

	// o3 untouched
	o3, _ := orders.GetByID(context.Background(), "o3")
	if o3 == nil || o3.TotalQuantity != 6 {
		t.Fatalf("o3 = %+v", o3)
	}
}

func TestDeleteByCategoryDefaultsToUnknown(t *testing.T) {
	orders := newMemOrderRepo(newMemCartRepo())
	orderUC := NewOrderUsecaseWithClock(orders, newPurgeCatalog(), fakeClock{day1})

	// 9999 is not in the catalog, so its line is unattributed
	seedOrder(t, orders, "o1", "u1",
		orderdom.Item{ProductCode: "9999", VariantName: "A", Quantity: 4},
		orderdom.Item{ProductCode: "1006", VariantName: "C", Quantity: 6})

	sum, err := orderUC.DeleteByCategory(context.Background(), "")
	if err != nil {
		t.Fatalf("DeleteByCategory: %v", err)
	}
	want := CategoryPurgeSummary{Category: "Unknown", DeletedOrders: 0, UpdatedOrders: 1, DeletedItems: 1}
	if *sum != want {
		t.Fatalf("summary = %+v, want %+v", *sum, want)
	}

	o1, _ := orders.GetByID(context.Background(), "o1")
	if o1 == nil || len(o1.Items) != 1 || o1.Items[0].ProductCode != "1006" || o1.TotalQuantity != 6 {
		t.Fatalf("o1 = %+v", o1)
	}
}

func TestDeleteByCategoryNeedsCatalog(t *testing.T) {
	orderUC := NewOrderUsecaseWithClock(newMemOrderRepo(newMemCartRepo()), nil, fakeClock{day1})
	if _, err := orderUC.DeleteByCategory(context.Background(), "Apparel"); err == nil {
		t.Fatal("err = nil, want catalog-not-configured error")
	}
}

func TestEndToEndCartToOrder(t *testing.T) {
	carts := newMemCartRepo()
	orders := newMemOrderRepo(carts)
	clock := fakeClock{time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)}
	cartUC := NewCartUsecaseWithClock(carts, clock)
	orderUC := NewOrderUsecaseWithClock(orders, nil, clock)
	ctx := context.Background()

	c, _, err := cartUC.ApplyDelta(ctx, "U", DeltaInput{ProductID: "p1005", ProductCode: "1005", VariantName: "A", Delta: 3})
	if err != nil || c.TotalQuantity != 3 {
		t.Fatalf("step 1: cart=%+v err=%v", c, err)
	}
	c, _, err = cartUC.ApplyDelta(ctx, "U", DeltaInput{ProductID: "p1005", ProductCode: "1005", VariantName: "B", Delta: 2})
	if err != nil || c.TotalQuantity != 5 {
		t.Fatalf("step 2: cart=%+v err=%v", c, err)
	}

	o, err := orderUC.Submit(ctx, "U")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Status != orderdom.StatusPending || o.TotalQuantity != 5 {
		t.Fatalf("order = %+v", o)
	}
	if o.Items[0] != (orderdom.Item{ProductCode: "1005", VariantName: "A", Quantity: 3}) ||
		o.Items[1] != (orderdom.Item{ProductCode: "1005", VariantName: "B", Quantity: 2}) {
		t.Fatalf("items = %+v", o.Items)
	}

	if _, err := cartUC.Get(ctx, "U"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("cart after submit: err = %v", err)
	}
}
