// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	orderdom "storefront/internal/domain/order"
)

var (
	ErrOrderInvalidArgument = errors.New("order_usecase: invalid argument")
	ErrOrderNotFound        = errors.New("order_usecase: not found")
	ErrCartEmpty            = errors.New("order_usecase: cart is empty")
)

// OrderUsecase coordinates cart submission and order administration.
// catalog may be nil when no catalog database is configured; only the
// category purge needs it.
type OrderUsecase struct {
	orders  orderdom.Repository
	catalog catalogdom.Repository
	clock   Clock
}

func NewOrderUsecase(orders orderdom.Repository, catalog catalogdom.Repository) *OrderUsecase {
	return &OrderUsecase{orders: orders, catalog: catalog, clock: systemClock{}}
}

// NewOrderUsecaseWithClock is useful for tests.
func NewOrderUsecaseWithClock(orders orderdom.Repository, catalog catalogdom.Repository, clock Clock) *OrderUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &OrderUsecase{orders: orders, catalog: catalog, clock: clock}
}

// Submit merges today's cart into today's order (creating it when absent)
// and deletes the cart. Order upsert and cart delete run in one storage
// transaction (repo.SubmitCart), so a retry can never double-count: the
// cart is gone the moment the merged order is visible.
func (uc *OrderUsecase) Submit(ctx context.Context, userID string) (*orderdom.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrOrderInvalidArgument
	}

	now := uc.clock.Now()
	day := cartdom.DayKey(now)

	return uc.orders.SubmitCart(ctx, uid, day, func(existing *orderdom.Order, c *cartdom.Cart) (*orderdom.Order, error) {
		if c == nil || c.Empty() {
			return nil, ErrCartEmpty
		}
		if existing == nil {
			return orderdom.NewFromCart(uc.orders.NewID(), c, "", now)
		}
		if err := existing.MergeCart(c.Items, now); err != nil {
			return nil, err
		}
		return existing, nil
	})
}

// Place creates a brand-new order from today's cart regardless of any
// existing order for the same (user, day); it never merges. The cart is
// consumed in the same transaction.
func (uc *OrderUsecase) Place(ctx context.Context, userID, note string) (*orderdom.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrOrderInvalidArgument
	}

	now := uc.clock.Now()
	day := cartdom.DayKey(now)

	return uc.orders.SubmitCart(ctx, uid, day, func(_ *orderdom.Order, c *cartdom.Cart) (*orderdom.Order, error) {
		if c == nil || c.Empty() {
			return nil, ErrCartEmpty
		}
		return orderdom.NewFromCart(uc.orders.NewID(), c, note, now)
	})
}

// UpdateStatus overwrites the status of an order. Out-of-range codes are
// rejected here; defined codes are written without transition checks.
func (uc *OrderUsecase) UpdateStatus(ctx context.Context, orderID string, status int) (*orderdom.Order, error) {
	oid := strings.TrimSpace(orderID)
	if oid == "" || !orderdom.ValidStatus(status) {
		return nil, ErrOrderInvalidArgument
	}

	o, err := uc.orders.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	o.SetStatus(orderdom.Status(status), uc.clock.Now())
	if err := uc.orders.Upsert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CategoryPurgeSummary reports what DeleteByCategory touched.
type CategoryPurgeSummary struct {
	Category      string `json:"category"`
	DeletedOrders int    `json:"deletedCompleteOrders"`
	UpdatedOrders int    `json:"updatedOrders"`
	DeletedItems  int    `json:"deletedItems"`
}

// DeleteByCategory removes every order line whose product belongs to the
// named category. The match is exact; lines the catalog cannot attribute to
// a category count as "Unknown", which is also the default target when
// category is blank. Orders left with no lines are deleted outright, the
// rest are rewritten with totals re-derived from the surviving lines.
func (uc *OrderUsecase) DeleteByCategory(ctx context.Context, category string) (*CategoryPurgeSummary, error) {
	if uc.catalog == nil {
		return nil, errors.New("order_usecase: catalog is not configured")
	}

	target := strings.TrimSpace(category)
	if target == "" {
		target = "Unknown"
	}

	orders, err := uc.orders.List(ctx, orderdom.Filter{})
	if err != nil {
		return nil, err
	}

	codes := map[string]struct{}{}
	for _, o := range orders {
		for _, it := range o.Items {
			codes[it.ProductCode] = struct{}{}
		}
	}
	codeList := make([]string, 0, len(codes))
	for code := range codes {
		codeList = append(codeList, code)
	}

	products, err := uc.catalog.ProductsByCodes(ctx, codeList)
	if err != nil {
		return nil, err
	}

	categoryNames := map[string]string{} // categoryId -> name, resolved once
	for _, p := range products {
		if p == nil || p.CategoryID == "" {
			continue
		}
		if _, ok := categoryNames[p.CategoryID]; ok {
			continue
		}
		cat, cerr := uc.catalog.GetCategory(ctx, p.CategoryID)
		if cerr != nil {
			return nil, cerr
		}
		name := ""
		if cat != nil {
			name = cat.Name
		}
		categoryNames[p.CategoryID] = name
	}

	categoryOf := func(it orderdom.Item) string {
		p := products[it.ProductCode]
		if p == nil || p.CategoryID == "" {
			return "Unknown"
		}
		if name := categoryNames[p.CategoryID]; name != "" {
			return name
		}
		return "Unknown"
	}

	now := uc.clock.Now()
	sum := &CategoryPurgeSummary{Category: target}
	for _, o := range orders {
		removed := o.RemoveItems(func(it orderdom.Item) bool {
			return categoryOf(it) == target
		}, now)
		if removed == 0 {
			continue
		}
		sum.DeletedItems += removed

		if o.Empty() {
			if err := uc.orders.Delete(ctx, o.ID); err != nil {
				return nil, err
			}
			sum.DeletedOrders++
			continue
		}
		if err := uc.orders.Upsert(ctx, o); err != nil {
			return nil, err
		}
		sum.UpdatedOrders++
	}
	return sum, nil
}

// Get returns one order by id, or ErrOrderNotFound.
func (uc *OrderUsecase) Get(ctx context.Context, orderID string) (*orderdom.Order, error) {
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return nil, ErrOrderInvalidArgument
	}

	o, err := uc.orders.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
