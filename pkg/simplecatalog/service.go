package simplecatalog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the asset lifecycle manager: every product write that
// touches the catalog record, its blobs, or both.
type Service interface {
	// CreateProduct validates the request, writes both blobs under fresh
	// keys and creates the catalog record with availability forced false.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)

	// UpdateProduct replaces metadata and, when replacement payloads are
	// supplied, the corresponding blobs (old blob deleted before the new
	// one is written). Availability is forced back to false.
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error)

	// DeleteProduct removes the catalog record first, then both blobs.
	DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// SetAvailability flips the availability flag only. Idempotent.
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// DownloadFile streams the purchasable file from the private namespace.
	DownloadFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)

	// DownloadImage streams the preview image.
	DownloadImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)

	// ImageURL returns the public URL of the preview image.
	ImageURL(ctx context.Context, id uuid.UUID) (string, error)
}

// QueryService defines the read-only catalog aggregations. Each query
// reports its wall-clock duration to the configured QueryMetrics sink.
type QueryService interface {
	AvailabilityCounts(ctx context.Context) (*AvailabilityCounts, error)
	SalesSummary(ctx context.Context) (*SalesSummary, error)
	// MostPopular ranks available products by descending order count.
	// A non-positive limit means DefaultListLimit. Ordering between
	// products with equal order counts is not deterministic.
	MostPopular(ctx context.Context, limit int) ([]*Product, error)
	// Newest ranks products by descending creation time with no
	// availability filter.
	Newest(ctx context.Context, limit int) ([]*Product, error)
}
