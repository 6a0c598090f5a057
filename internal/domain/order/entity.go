// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrInvalidOrder = errors.New("order: invalid")
	ErrNoItems      = errors.New("order: no items")
)

// Item is one line item inside an order.
// Uniqueness within one order is defined by (ProductCode, VariantName).
// Order lines carry no catalog references; display joins go through the
// catalog read view instead.
type Item struct {
	ProductCode string `json:"productCode" firestore:"productCode"`
	VariantName string `json:"variantName" firestore:"variantName"`
	Quantity    int    `json:"quantity" firestore:"quantity"`
}

// Order represents "an order document".
//   - At most one order per (user, day) is reachable through the submit flow;
//     Place creates detached orders that never merge.
//   - TotalQuantity is always re-derived from item sums, never incremented
//     blindly, so a retried merge cannot drift the counter.
type Order struct {
	ID     string `json:"id" firestore:"id"`
	UserID string `json:"userId" firestore:"userId"`

	// Date is the calendar-day key, format YYYY-MM-DD.
	Date string `json:"date" firestore:"date"`

	Items         []Item `json:"items" firestore:"items"`
	TotalQuantity int    `json:"totalQuantity" firestore:"totalQuantity"`

	Status Status `json:"status" firestore:"status"`
	Note   string `json:"note,omitempty" firestore:"note"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NewFromCart builds a fresh PENDING order from cart items.
func NewFromCart(id string, c *cartdom.Cart, note string, now time.Time) (*Order, error) {
	if c == nil || c.Empty() {
		return nil, ErrNoItems
	}

	o := &Order{
		ID:        strings.TrimSpace(id),
		UserID:    c.UserID,
		Date:      c.Date,
		Items:     []Item{},
		Status:    StatusPending,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.merge(c.Items)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// MergeCart folds cart items into the order: quantities are summed for a
// matching (productCode, variantName) line and appended otherwise. Lines
// already on the order but absent from the cart are preserved untouched.
func (o *Order) MergeCart(items []cartdom.Item, now time.Time) error {
	if o == nil {
		return ErrInvalidOrder
	}
	if len(items) == 0 {
		return ErrNoItems
	}
	o.merge(items)
	o.UpdatedAt = now
	return o.validate()
}

// RemoveItems drops every line item matched and re-derives TotalQuantity
// from the survivors. It returns the number of removed lines. The order may
// be left Empty; callers delete the doc then, an empty order is never
// persisted.
func (o *Order) RemoveItems(match func(Item) bool, now time.Time) int {
	if o == nil || len(o.Items) == 0 {
		return 0
	}

	kept := make([]Item, 0, len(o.Items))
	removed := 0
	for _, it := range o.Items {
		if match(it) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0
	}

	o.Items = kept
	o.TotalQuantity = sumQuantities(kept)
	o.UpdatedAt = now
	return removed
}

// Empty reports whether the order holds no line items.
func (o *Order) Empty() bool {
	return o == nil || len(o.Items) == 0
}

// SetStatus overwrites the status. Transitions are not guarded.
func (o *Order) SetStatus(s Status, now time.Time) {
	o.Status = s
	o.UpdatedAt = now
}

func (o *Order) merge(items []cartdom.Item) {
	if o.Items == nil {
		o.Items = []Item{}
	}
	for _, it := range items {
		code := strings.TrimSpace(it.ProductCode)
		variant := strings.TrimSpace(it.VariantName)
		if code == "" || variant == "" || it.Quantity <= 0 {
			continue
		}
		idx := findItemIndex(o.Items, code, variant)
		if idx >= 0 {
			o.Items[idx].Quantity += it.Quantity
		} else {
			o.Items = append(o.Items, Item{
				ProductCode: code,
				VariantName: variant,
				Quantity:    it.Quantity,
			})
		}
	}
	o.TotalQuantity = sumQuantities(o.Items)
}

func (o *Order) validate() error {
	if o == nil {
		return ErrInvalidOrder
	}
	if strings.TrimSpace(o.ID) == "" || strings.TrimSpace(o.UserID) == "" || strings.TrimSpace(o.Date) == "" {
		return ErrInvalidOrder
	}
	if o.CreatedAt.IsZero() || o.UpdatedAt.IsZero() {
		return ErrInvalidOrder
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}

	seen := map[string]struct{}{}
	for _, it := range o.Items {
		if strings.TrimSpace(it.ProductCode) == "" || strings.TrimSpace(it.VariantName) == "" {
			return ErrInvalidOrder
		}
		if it.Quantity <= 0 {
			return ErrInvalidOrder
		}
		k := it.ProductCode + "\x00" + it.VariantName
		if _, dup := seen[k]; dup {
			return ErrInvalidOrder
		}
		seen[k] = struct{}{}
	}
	if o.TotalQuantity != sumQuantities(o.Items) {
		return ErrInvalidOrder
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findItemIndex(items []Item, code, variant string) int {
	for i := range items {
		if items[i].ProductCode == code && items[i].VariantName == variant {
			return i
		}
	}
	return -1
}

func sumQuantities(items []Item) int {
	sum := 0
	for _, it := range items {
		sum += it.Quantity
	}
	return sum
}
