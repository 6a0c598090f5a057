// internal/application/query/order_query.go
package query

import (
	"context"
	"sort"
	"strings"
	"time"

	catalogdom "storefront/internal/domain/catalog"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

// OrderView is the display shape of one order. It is deliberately distinct
// from CartView: the system this replaces reused its cart payload for order
// views, which is a naming collision we do not reproduce.
type OrderView struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Date          string        `json:"date"`
	TotalQuantity int           `json:"totalQuantity"`
	Status        int           `json:"status"`
	StatusText    string        `json:"statusText"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Products      []ProductView `json:"products"`
}

// DateGroup is one bucket of the grouped listing: a calendar day and one
// summary string per order product, e.g. "1006 → C - 6 / D - 6 / E - 12".
type DateGroup struct {
	Date      string   `json:"date"`
	Summaries []string `json:"summaries"`
}

// FlatFilter narrows the administrative flat listing.
// Status and Date match exactly; Category matches the category name
// case-insensitively and is applied per line item, not per order.
type FlatFilter struct {
	Status   *int
	Category string
	Date     string
}

// FlatRecord is one denormalized line of the administrative listing.
type FlatRecord struct {
	OrderID     string    `json:"orderId"`
	Date        string    `json:"date"`
	City        string    `json:"city"`
	FirmName    string    `json:"firmName"`
	Category    string    `json:"category"`
	ColorCode   string    `json:"colorCode,omitempty"`
	ProductName string    `json:"productName"`
	ProductCode string    `json:"productCode"`
	VariantName string    `json:"variantName"`
	Quantity    int       `json:"quantity"`
	Status      int       `json:"status"`
	StatusText  string    `json:"statusText"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderQuery resolves order display views by joining stored orders against
// the catalog and user read views.
type OrderQuery struct {
	orders  orderdom.Repository
	catalog catalogdom.Repository
	users   userdom.Repository
}

func NewOrderQuery(orders orderdom.Repository, catalog catalogdom.Repository, users userdom.Repository) *OrderQuery {
	return &OrderQuery{orders: orders, catalog: catalog, users: users}
}

// View returns one order as display records.
func (q *OrderQuery) View(ctx context.Context, orderID string) (*OrderView, []string, error) {
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return nil, nil, ErrInvalidArgument
	}

	o, err := q.orders.GetByID(ctx, oid)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, ErrNotFound
	}

	view, warnings, err := q.orderView(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	return view, warnings, nil
}

// Grouped buckets orders by calendar day, most recent day first, with one
// summary string per product of each order. userID empty means all users.
func (q *OrderQuery) Grouped(ctx context.Context, userID string) ([]DateGroup, []string, error) {
	orders, err := q.orders.List(ctx, orderdom.Filter{UserID: strings.TrimSpace(userID)})
	if err != nil {
		return nil, nil, err
	}

	// oldest order first within a day, so summaries follow submission order
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	byDate := map[string][]string{}
	dates := []string{}
	var warnings []string

	for _, o := range orders {
		_, variantsByCode, rerr := resolveProducts(ctx, q.catalog, codesOfOrder(o.Items))
		if rerr != nil {
			return nil, nil, rerr
		}
		breakdown, w := Reconcile(LinesFromOrder(o.Items), variantsByCode)
		warnings = append(warnings, w...)

		if _, seen := byDate[o.Date]; !seen {
			dates = append(dates, o.Date)
		}
		for _, pq := range breakdown {
			byDate[o.Date] = append(byDate[o.Date], SummaryLine(pq))
		}
	}

	// calendar-date descending, not string ordering
	sort.Slice(dates, func(i, j int) bool {
		di, ei := time.Parse("2006-01-02", dates[i])
		dj, ej := time.Parse("2006-01-02", dates[j])
		if ei != nil || ej != nil {
			return dates[i] > dates[j]
		}
		return di.After(dj)
	})

	out := make([]DateGroup, 0, len(dates))
	for _, d := range dates {
		out = append(out, DateGroup{Date: d, Summaries: byDate[d]})
	}
	return out, warnings, nil
}

// FlatList joins orders with catalog and user display fields and emits one
// record per line item surviving the filters.
func (q *OrderQuery) FlatList(ctx context.Context, f FlatFilter) ([]FlatRecord, error) {
	filter := orderdom.Filter{Date: strings.TrimSpace(f.Date)}
	if f.Status != nil {
		s := orderdom.Status(*f.Status)
		filter.Status = &s
	}

	orders, err := q.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []FlatRecord{}, nil
	}

	userIDs := map[string]struct{}{}
	codes := map[string]struct{}{}
	for _, o := range orders {
		userIDs[o.UserID] = struct{}{}
		for _, it := range o.Items {
			codes[it.ProductCode] = struct{}{}
		}
	}

	profiles, err := q.users.ProfilesByIDs(ctx, keys(userIDs))
	if err != nil {
		return nil, err
	}
	products, err := q.catalog.ProductsByCodes(ctx, keys(codes))
	if err != nil {
		return nil, err
	}

	categories := map[string]*catalogdom.Category{} // categoryId -> record, resolved once
	wantCategory := strings.TrimSpace(f.Category)

	records := []FlatRecord{}
	for _, o := range orders {
		profile := profiles[o.UserID]
		for _, it := range o.Items {
			p := products[it.ProductCode]

			var category *catalogdom.Category
			if p != nil && p.CategoryID != "" {
				cat, ok := categories[p.CategoryID]
				if !ok {
					var cerr error
					cat, cerr = q.catalog.GetCategory(ctx, p.CategoryID)
					if cerr != nil {
						return nil, cerr
					}
					categories[p.CategoryID] = cat
				}
				category = cat
			}

			categoryName := ""
			if category != nil {
				categoryName = category.Name
			}
			if wantCategory != "" && !strings.EqualFold(categoryName, wantCategory) {
				continue
			}

			rec := FlatRecord{
				OrderID:     o.ID,
				Date:        o.Date,
				ProductCode: it.ProductCode,
				VariantName: it.VariantName,
				Quantity:    it.Quantity,
				Category:    categoryName,
				Status:      int(o.Status),
				StatusText:  o.Status.Text(),
				Note:        o.Note,
				CreatedAt:   o.CreatedAt,
			}
			if category != nil {
				rec.ColorCode = category.ColorCode
			}
			if p != nil {
				rec.ProductName = p.Name
			}
			if profile != nil {
				rec.City = profile.City
				rec.FirmName = profile.FirmName
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func (q *OrderQuery) orderView(ctx context.Context, o *orderdom.Order) (*OrderView, []string, error) {
	products, variantsByCode, err := resolveProducts(ctx, q.catalog, codesOfOrder(o.Items))
	if err != nil {
		return nil, nil, err
	}

	breakdown, warnings := Reconcile(LinesFromOrder(o.Items), variantsByCode)

	view := &OrderView{
		ID:            o.ID,
		UserID:        o.UserID,
		Date:          o.Date,
		TotalQuantity: o.TotalQuantity,
		Status:        int(o.Status),
		StatusText:    o.Status.Text(),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		Products:      make([]ProductView, 0, len(breakdown)),
	}
	for _, pq := range breakdown {
		view.Products = append(view.Products, newProductView(pq, products[pq.ProductCode]))
	}
	return view, warnings, nil
}

func codesOfOrder(items []orderdom.Item) []string {
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

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
