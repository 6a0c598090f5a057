// internal/domain/catalog/entity.go
package catalog

// Read-only view of the product catalog owned by the admin system.
// The core never writes these records.

// Variant is one sellable variant of a product.
// Names are free-form alphanumeric strings keyed by the catalog record;
// the historical fixed A..F set is not assumed anywhere.
type Variant struct {
	Name      string `json:"name"`
	SetSize   int    `json:"setSize"`
	Available bool   `json:"available"`
}

type Product struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	CategoryID    string    `json:"categoryId"`
	SubcategoryID string    `json:"subcategoryId"`
	MediaURL      string    `json:"mediaUrl,omitempty"`
	MediaType     string    `json:"mediaType,omitempty"`
	Variants      []Variant `json:"variants"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ColorCode is the admin UI swatch for the category, e.g. "#d97706".
	ColorCode string `json:"colorCode,omitempty"`
}
