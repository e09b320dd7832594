package simplecatalog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for a single blob namespace. Keys are
// opaque; missing keys are reported as ErrBlobNotFound (possibly wrapped).
type BlobStore interface {
	// Upload writes the blob under the given key, replacing any previous
	// blob stored there.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns the blob bytes for the given key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob stored under the given key.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the externally addressable URL for the given key.
	// Stores backing a private namespace return an error.
	PublicURL(ctx context.Context, key string) (string, error)
}

// Repository defines the interface for product and order persistence.
type Repository interface {
	// Product operations
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	// DeleteProduct removes the record and returns it so callers can
	// collect the blob keys it referenced.
	DeleteProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	ListProducts(ctx context.Context) ([]*Product, error)

	// Order intake (aggregation input; never updated or deleted here)
	CreateOrder(ctx context.Context, order *Order) error

	// Aggregate queries
	CountByAvailability(ctx context.Context) (*AvailabilityCounts, error)
	OrderTotals(ctx context.Context) (*SalesSummary, error)
	// MostPopular returns available products ordered by descending order
	// count. Ordering between equal counts is backend-defined.
	MostPopular(ctx context.Context, limit int) ([]*Product, error)
	// Newest returns products ordered by descending creation time,
	// regardless of availability.
	Newest(ctx context.Context, limit int) ([]*Product, error)
}

// Invalidator marks a cached view path stale after a successful write.
// Delivery is at-most-effort: callers discard Invalidate errors.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// QueryMetrics receives wall-clock durations of aggregate queries.
// Reporting failures must never fail the query; callers discard errors.
type QueryMetrics interface {
	RecordQueryDuration(ctx context.Context, query string, d time.Duration) error
}
