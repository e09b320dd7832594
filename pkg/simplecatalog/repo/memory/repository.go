package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// Repository implements simplecatalog.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*simplecatalog.Product
	orders   map[uuid.UUID]*simplecatalog.Order
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		products: make(map[uuid.UUID]*simplecatalog.Product),
		orders:   make(map[uuid.UUID]*simplecatalog.Order),
	}
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *simplecatalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	productCopy := *product
	r.products[product.ID] = &productCopy

	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*simplecatalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, simplecatalog.ErrProductNotFound
	}

	productCopy := *product
	return &productCopy, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *simplecatalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return simplecatalog.ErrProductNotFound
	}

	productCopy := *product
	r.products[product.ID] = &productCopy

	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (*simplecatalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return nil, simplecatalog.ErrProductNotFound
	}

	delete(r.products, id)

	productCopy := *product
	return &productCopy, nil
}

func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return simplecatalog.ErrProductNotFound
	}

	product.Available = available
	product.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*simplecatalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecatalog.Product, 0, len(r.products))
	for _, product := range r.products {
		productCopy := *product
		result = append(result, &productCopy)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Order intake

func (r *Repository) CreateOrder(ctx context.Context, order *simplecatalog.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[order.ProductID]; !exists {
		return simplecatalog.ErrProductNotFound
	}

	orderCopy := *order
	if orderCopy.ID == uuid.Nil {
		orderCopy.ID = uuid.New()
	}
	if orderCopy.CreatedAt.IsZero() {
		orderCopy.CreatedAt = time.Now().UTC()
	}
	r.orders[orderCopy.ID] = &orderCopy

	return nil
}

// Aggregate queries

func (r *Repository) CountByAvailability(ctx context.Context) (*simplecatalog.AvailabilityCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := &simplecatalog.AvailabilityCounts{}
	for _, product := range r.products {
		if product.Available {
			counts.Active++
		} else {
			counts.Inactive++
		}
	}
	return counts, nil
}

func (r *Repository) OrderTotals(ctx context.Context) (*simplecatalog.SalesSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &simplecatalog.SalesSummary{}
	for _, order := range r.orders {
		summary.TotalCents += order.PriceCents
		summary.NumberOfSales++
	}
	return summary, nil
}

func (r *Repository) MostPopular(ctx context.Context, limit int) ([]*simplecatalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, order := range r.orders {
		counts[order.ProductID]++
	}

	var result []*simplecatalog.Product
	for _, product := range r.products {
		if !product.Available {
			continue
		}
		productCopy := *product
		result = append(result, &productCopy)
	}

	// Descending order count; ties keep map iteration order, which is
	// deliberately unspecified.
	sort.SliceStable(result, func(i, j int) bool {
		return counts[result[i].ID] > counts[result[j].ID]
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *Repository) Newest(ctx context.Context, limit int) ([]*simplecatalog.Product, error) {
	products, err := r.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}
