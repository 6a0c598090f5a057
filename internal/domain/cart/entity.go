// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart  = errors.New("cart: invalid")
	ErrZeroDelta    = errors.New("cart: delta must be non-zero")
	ErrItemNotFound = errors.New("cart: item not found")
)

// Item represents one line item in a cart.
// Uniqueness inside a cart is defined by (ProductCode, VariantName), exact match.
type Item struct {
	ProductID   string `json:"productId" firestore:"productId"`
	CategoryID  string `json:"categoryId,omitempty" firestore:"categoryId"`
	ProductCode string `json:"productCode" firestore:"productCode"`
	VariantName string `json:"variantName" firestore:"variantName"`
	Quantity    int    `json:"quantity" firestore:"quantity"`
}

// Cart represents "a cart document".
//   - docId = <userId>_<date> (Firestore), so at most one cart per (user, day)
//     exists structurally.
//   - TotalQuantity always equals the sum of item quantities.
//   - An empty cart is never persisted; callers delete the doc instead (see Empty).
type Cart struct {
	// ID is the Firestore docId (= DocID(userId, date)).
	ID string `json:"id" firestore:"id"`

	UserID string `json:"userId" firestore:"userId"`

	// Date is the calendar-day key, format YYYY-MM-DD.
	Date string `json:"date" firestore:"date"`

	Items         []Item `json:"items" firestore:"items"`
	TotalQuantity int    `json:"totalQuantity" firestore:"totalQuantity"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// DayKey formats t as the calendar-day key used for cart/order documents.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DocID builds the cart docId for a (user, day) pair.
func DocID(userID, day string) string {
	return strings.TrimSpace(userID) + "_" + strings.TrimSpace(day)
}

// NewCart creates a new empty cart doc for (userID, day).
func NewCart(userID, day string, now time.Time) (*Cart, error) {
	uid := strings.TrimSpace(userID)
	d := strings.TrimSpace(day)
	if uid == "" || d == "" {
		return nil, ErrInvalidCart
	}

	c := &Cart{
		ID:            DocID(uid, d),
		UserID:        uid,
		Date:          d,
		Items:         []Item{},
		TotalQuantity: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyDelta applies a signed quantity change for (productCode, variantName).
//
//   - delta == 0 -> ErrZeroDelta
//   - item absent and delta < 0 -> ErrItemNotFound
//   - new quantity <= 0 -> the line is removed and TotalQuantity drops by the
//     item's prior quantity (not by delta)
//
// After a removal the cart may be Empty(); callers must then delete the doc
// rather than persist it.
func (c *Cart) ApplyDelta(productID, categoryID, productCode, variantName string, delta int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if delta == 0 {
		return ErrZeroDelta
	}

	pid := strings.TrimSpace(productID)
	code := strings.TrimSpace(productCode)
	variant := strings.TrimSpace(variantName)
	if code == "" || variant == "" {
		return ErrInvalidCart
	}

	if c.Items == nil {
		c.Items = []Item{}
	}

	idx := findItemIndex(c.Items, code, variant)
	if idx < 0 {
		if delta < 0 {
			return ErrItemNotFound
		}
		if pid == "" {
			return ErrInvalidCart
		}
		c.Items = append(c.Items, Item{
			ProductID:   pid,
			CategoryID:  strings.TrimSpace(categoryID),
			ProductCode: code,
			VariantName: variant,
			Quantity:    delta,
		})
		c.TotalQuantity += delta
		c.touch(now)
		return c.validate()
	}

	prior := c.Items[idx].Quantity
	next := prior + delta
	if next <= 0 {
		c.Items = removeIndex(c.Items, idx)
		c.TotalQuantity -= prior
	} else {
		c.Items[idx].Quantity = next
		c.TotalQuantity += delta
	}

	c.touch(now)
	return c.validate()
}

// Empty reports whether the cart holds no items.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.UserID) == "" || strings.TrimSpace(c.Date) == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}

	sum := 0
	seen := map[itemKey]struct{}{}
	for _, it := range c.Items {
		if strings.TrimSpace(it.ProductCode) == "" || strings.TrimSpace(it.VariantName) == "" {
			return ErrInvalidCart
		}
		if it.Quantity <= 0 {
			return ErrInvalidCart
		}
		k := itemKey{code: it.ProductCode, variant: it.VariantName}
		if _, dup := seen[k]; dup {
			return ErrInvalidCart
		}
		seen[k] = struct{}{}
		sum += it.Quantity
	}
	if c.TotalQuantity != sum {
		return ErrInvalidCart
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

type itemKey struct {
	code    string
	variant string
}

func findItemIndex(items []Item, code, variant string) int {
	for i := range items {
		if items[i].ProductCode == code && items[i].VariantName == variant {
			return i
		}
	}
	return -1
}

func removeIndex(items []Item, idx int) []Item {
	if idx < 0 || idx >= len(items) {
		return items
	}
	// preserve order
	return append(items[:idx], items[idx+1:]...)
}
