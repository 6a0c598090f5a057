// internal/application/query/reconcile.go
package query

import (
	"fmt"
	"strings"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	orderdom "storefront/internal/domain/order"
)

// Line is the storage-neutral line item the reconciliation engine consumes.
// Cart and order lines both reduce to it.
type Line struct {
	ProductCode string
	VariantName string
	Quantity    int
}

// VariantQuantity is one variant row of a reconciled product, annotated with
// the aggregated quantity (0 when no line item matched).
type VariantQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ProductQuantities is the per-product reconciliation result.
type ProductQuantities struct {
	ProductCode string            `json:"productCode"`
	Variants    []VariantQuantity `json:"variants"`
}

// LinesFromCart reduces cart items to reconciliation lines.
func LinesFromCart(items []cartdom.Item) []Line {
	out := make([]Line, 0, len(items))
	for _, it := range items {
		out = append(out, Line{ProductCode: it.ProductCode, VariantName: it.VariantName, Quantity: it.Quantity})
	}
	return out
}

// LinesFromOrder reduces order items to reconciliation lines.
func LinesFromOrder(items []orderdom.Item) []Line {
	out := make([]Line, 0, len(items))
	for _, it := range items {
		out = append(out, Line{ProductCode: it.ProductCode, VariantName: it.VariantName, Quantity: it.Quantity})
	}
	return out
}

// Reconcile derives the per-product, per-variant quantity breakdown for a set
// of line items.
//
//   - Products appear in first-seen line order.
//   - When the catalog knows the product, every catalog variant gets a row
//     (quantity 0 when nothing matched), in catalog order. Otherwise only
//     variants mentioned by the lines appear, in first-seen order.
//   - Variant matching is exact string comparison.
//   - A line whose variant name has no catalog row does not fail the
//     operation: it is skipped and reported in warnings, so a catalog that
//     evolved past stored orders cannot break reads.
//
// Pure function: identical input always yields identical output, and nothing
// is logged here; callers decide what to do with warnings.
func Reconcile(lines []Line, variantsByCode map[string][]catalogdom.Variant) ([]ProductQuantities, []string) {
	type bucket struct {
		names []string // variant row order
		qty   map[string]int
		known bool // catalog-backed variant list
	}

	order := []string{}
	buckets := map[string]*bucket{}
	var warnings []string

	for _, ln := range lines {
		code := strings.TrimSpace(ln.ProductCode)
		variant := strings.TrimSpace(ln.VariantName)
		if code == "" || variant == "" {
			continue
		}

		b, ok := buckets[code]
		if !ok {
			b = &bucket{qty: map[string]int{}}
			if vs, has := variantsByCode[code]; has {
				b.known = true
				for _, v := range vs {
					name := strings.TrimSpace(v.Name)
					if name == "" {
						continue
					}
					if _, dup := b.qty[name]; dup {
						continue
					}
					b.names = append(b.names, name)
					b.qty[name] = 0
				}
			}
			buckets[code] = b
			order = append(order, code)
		}

		if _, has := b.qty[variant]; !has {
			if b.known {
				warnings = append(warnings, fmt.Sprintf("product %s: variant %q has no catalog entry, %d unit(s) not attributed", code, variant, ln.Quantity))
				continue
			}
			// no catalog join: the line itself defines the variant row
			b.names = append(b.names, variant)
			b.qty[variant] = 0
		}
		b.qty[variant] += ln.Quantity
	}

	out := make([]ProductQuantities, 0, len(order))
	for _, code := range order {
		b := buckets[code]
		vs := make([]VariantQuantity, 0, len(b.names))
		for _, name := range b.names {
			vs = append(vs, VariantQuantity{Name: name, Quantity: b.qty[name]})
		}
		out = append(out, ProductQuantities{ProductCode: code, Variants: vs})
	}
	return out, warnings
}

// SummaryLine flattens one reconciled product into the grouped-listing token
// format, e.g. "1005 → C - 6 / D - 6 / E - 12". Zero-quantity variants are
// omitted.
func SummaryLine(p ProductQuantities) string {
	tokens := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.Quantity <= 0 {
			continue
		}
		tokens = append(tokens, fmt.Sprintf("%s - %d", v.Name, v.Quantity))
	}
	return p.ProductCode + " → " + strings.Join(tokens, " / ")
}
