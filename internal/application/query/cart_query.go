// internal/application/query/cart_query.go
package query

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
)

var (
	ErrNotFound        = errors.New("query: not found")
	ErrInvalidArgument = errors.New("query: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// ProductView is one product of a cart/order view: catalog display fields
// plus the reconciled per-variant quantities.
type ProductView struct {
	ProductID   string            `json:"productId,omitempty"`
	ProductCode string            `json:"productCode"`
	ProductName string            `json:"productName,omitempty"`
	CategoryID  string            `json:"categoryId,omitempty"`
	MediaURL    string            `json:"mediaUrl,omitempty"`
	MediaType   string            `json:"mediaType,omitempty"`
	Variants    []VariantQuantity `json:"variants"`
}

// CartView is the display shape of one cart.
type CartView struct {
	UserID        string        `json:"userId"`
	Date          string        `json:"date"`
	TotalQuantity int           `json:"totalQuantity"`
	Products      []ProductView `json:"products"`
}

// CartQuery joins stored cart line items against the catalog read view.
type CartQuery struct {
	carts   cartdom.Repository
	catalog catalogdom.Repository
	clock   Clock
}

func NewCartQuery(carts cartdom.Repository, catalog catalogdom.Repository) *CartQuery {
	return &CartQuery{carts: carts, catalog: catalog, clock: systemClock{}}
}

// NewCartQueryWithClock is useful for tests.
func NewCartQueryWithClock(carts cartdom.Repository, catalog catalogdom.Repository, clock Clock) *CartQuery {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartQuery{carts: carts, catalog: catalog, clock: clock}
}

// View returns today's cart for userID as display records.
// warnings carries unmatched-variant diagnostics for the caller to log.
func (q *CartQuery) View(ctx context.Context, userID string) (*CartView, []string, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, nil, ErrInvalidArgument
	}

	day := cartdom.DayKey(q.clock.Now())
	c, err := q.carts.Get(ctx, uid, day)
	if err != nil {
		return nil, nil, err
	}
	if c == nil || c.Empty() {
		return nil, nil, ErrNotFound
	}

	products, variantsByCode, err := resolveProducts(ctx, q.catalog, codesOfCart(c.Items))
	if err != nil {
		return nil, nil, err
	}

	breakdown, warnings := Reconcile(LinesFromCart(c.Items), variantsByCode)

	view := &CartView{
		UserID:        c.UserID,
		Date:          c.Date,
		TotalQuantity: c.TotalQuantity,
		Products:      make([]ProductView, 0, len(breakdown)),
	}
	for _, pq := range breakdown {
		view.Products = append(view.Products, newProductView(pq, products[pq.ProductCode]))
	}
	return view, warnings, nil
}

// ----------------------------
// Shared helpers (cart + order views)
// ----------------------------

func codesOfCart(items []cartdom.Item) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, it := range items {
		code := strings.TrimSpace(it.ProductCode)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func resolveProducts(ctx context.Context, repo catalogdom.Repository, codes []string) (map[string]*catalogdom.Product, map[string][]catalogdom.Variant, error) {
	if len(codes) == 0 {
		return map[string]*catalogdom.Product{}, map[string][]catalogdom.Variant{}, nil
	}
	products, err := repo.ProductsByCodes(ctx, codes)
	if err != nil {
		return nil, nil, err
	}
	variantsByCode := make(map[string][]catalogdom.Variant, len(products))
	for code, p := range products {
		if p == nil {
			continue
		}
		variantsByCode[code] = p.Variants
	}
	return products, variantsByCode, nil
}

func newProductView(pq ProductQuantities, p *catalogdom.Product) ProductView {
	v := ProductView{
		ProductCode: pq.ProductCode,
		Variants:    pq.Variants,
	}
	if p != nil {
		v.ProductID = p.ID
		v.ProductName = p.Name
		v.CategoryID = p.CategoryID
		v.MediaURL = p.MediaURL
		v.MediaType = p.MediaType
	}
	return v
}
