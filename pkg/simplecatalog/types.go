package simplecatalog

import (
	"time"

	"github.com/google/uuid"
)

// Namespace is a storage partition determining blob accessibility.
type Namespace string

// Blob namespaces (typed).
const (
	// NamespaceFiles holds purchasable files; paths are never publicly
	// addressable.
	NamespaceFiles Namespace = "files"

	// NamespaceImages holds preview images served under a public prefix.
	NamespaceImages Namespace = "images"
)

// Cached marketplace views that list products. Write operations signal these
// paths to the configured Invalidator after a successful catalog mutation.
const (
	PathMarketplace         = "/marketplace"
	PathMarketplaceProducts = "/marketplace/products"
)

// ListingPaths are all cached views invalidated by product writes.
var ListingPaths = []string{PathMarketplace, PathMarketplaceProducts}

// DefaultListLimit is the ranking size used when a caller passes a
// non-positive limit to MostPopular or Newest.
const DefaultListLimit = 6

// Product represents a purchasable digital product. FileKey and ImageKey are
// blob keys in the files and images namespaces respectively; each points to
// exactly one live blob, and keys are never shared between live products.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Available   bool      `json:"is_available_for_purchase"`
	FileKey     string    `json:"file_key"`
	ImageKey    string    `json:"image_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Order records a completed purchase of a product. Orders are aggregation
// input for the query service; this package never mutates them beyond intake.
type Order struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// AvailabilityCounts partitions the product count by availability flag.
type AvailabilityCounts struct {
	Active   int64 `json:"activeCount"`
	Inactive int64 `json:"inactiveCount"`
}

// SalesSummary totals the entire order set. TotalCents is in the smallest
// currency unit; presentation layers convert to currency units.
type SalesSummary struct {
	TotalCents    int64 `json:"total_cents"`
	NumberOfSales int64 `json:"number_of_sales"`
}
