// internal/adapters/out/db/product_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"storefront/internal/adapters/out/db/common"
	catalogdom "storefront/internal/domain/catalog"
)

// ProductRepositoryPG reads the catalog from PostgreSQL. The catalog is
// maintained by a separate admin system, so this adapter is read-only.
type ProductRepositoryPG struct {
	DB *sql.DB
}

func NewProductRepositoryPG(db *sql.DB) *ProductRepositoryPG {
	return &ProductRepositoryPG{DB: db}
}

const productSelect = `
SELECT id, code, name, category_id, COALESCE(subcategory_id, ''), COALESCE(media_url, ''), COALESCE(media_type, '')
FROM products
`

// GetProductByID returns (nil, nil) if not found (nil policy).
func (r *ProductRepositoryPG) GetProductByID(ctx context.Context, id string) (*catalogdom.Product, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("product_repository_pg: db is nil")
	}

	run := common.GetRunner(ctx, r.DB)
	row := run.QueryRowContext(ctx, productSelect+`WHERE id = $1`, strings.TrimSpace(id))

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, map[string]*catalogdom.Product{p.ID: p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductByCode returns (nil, nil) if not found (nil policy).
func (r *ProductRepositoryPG) GetProductByCode(ctx context.Context, code string) (*catalogdom.Product, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("product_repository_pg: db is nil")
	}

	run := common.GetRunner(ctx, r.DB)
	row := run.QueryRowContext(ctx, productSelect+`WHERE code = $1`, strings.TrimSpace(code))

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, map[string]*catalogdom.Product{p.ID: p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ProductsByCodes batch-loads products keyed by code. Codes with no catalog
// row are simply absent from the result, never an error.
func (r *ProductRepositoryPG) ProductsByCodes(ctx context.Context, codes []string) (map[string]*catalogdom.Product, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("product_repository_pg: db is nil")
	}

	out := map[string]*catalogdom.Product{}
	if len(codes) == 0 {
		return out, nil
	}

	run := common.GetRunner(ctx, r.DB)
	rows, err := run.QueryContext(ctx, productSelect+`WHERE code = ANY($1)`, pq.Array(codes))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[string]*catalogdom.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.Code] = p
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachVariants(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategory returns (nil, nil) if not found (nil policy).
func (r *ProductRepositoryPG) GetCategory(ctx context.Context, id string) (*catalogdom.Category, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("product_repository_pg: db is nil")
	}

	run := common.GetRunner(ctx, r.DB)
	row := run.QueryRowContext(ctx, `SELECT id, name, COALESCE(color_code, '') FROM categories WHERE id = $1`, strings.TrimSpace(id))

	var c catalogdom.Category
	if err := row.Scan(&c.ID, &c.Name, &c.ColorCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// attachVariants loads product_variants for every product in byID, in the
// catalog's declared position order. That order is what zero-filled listings
// follow.
func (r *ProductRepositoryPG) attachVariants(ctx context.Context, byID map[string]*catalogdom.Product) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	run := common.GetRunner(ctx, r.DB)
	rows, err := run.QueryContext(ctx, `
SELECT product_id, name, set_size, available
FROM product_variants
WHERE product_id = ANY($1)
ORDER BY product_id, position ASC
`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pid string
		var v catalogdom.Variant
		if err := rows.Scan(&pid, &v.Name, &v.SetSize, &v.Available); err != nil {
			return err
		}
		if p, ok := byID[pid]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

func scanProduct(row common.RowScanner) (*catalogdom.Product, error) {
	var p catalogdom.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.SubcategoryID, &p.MediaURL, &p.MediaType)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
