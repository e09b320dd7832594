package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// CatalogHandler serves the read-only catalog aggregation endpoints.
type CatalogHandler struct {
	queries simplecatalog.QueryService
}

// NewCatalogHandler creates a new catalog query handler
func NewCatalogHandler(queries simplecatalog.QueryService) *CatalogHandler {
	return &CatalogHandler{queries: queries}
}

// Routes returns the router for catalog query endpoints
func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/availability-counts", h.GetAvailabilityCounts)
	r.Get("/sales-summary", h.GetSalesSummary)
	r.Get("/most-popular", h.GetMostPopular)
	r.Get("/newest", h.GetNewest)
	return r
}

// SalesSummaryResponse reports totals in currency units plus sale count
type SalesSummaryResponse struct {
	Amount        float64 `json:"amount"`
	NumberOfSales int64   `json:"numberOfSales"`
}

// GetAvailabilityCounts returns product counts partitioned by availability
func (h *CatalogHandler) GetAvailabilityCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.queries.AvailabilityCounts(r.Context())
	if err != nil {
		slog.Error("Failed to count products by availability", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, counts)
}

// GetSalesSummary returns revenue and sale count over all orders
func (h *CatalogHandler) GetSalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.queries.SalesSummary(r.Context())
	if err != nil {
		slog.Error("Failed to summarize sales", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, SalesSummaryResponse{
		Amount:        float64(summary.TotalCents) / 100,
		NumberOfSales: summary.NumberOfSales,
	})
}

// GetMostPopular returns the top available products by order count
func (h *CatalogHandler) GetMostPopular(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.MostPopular(r.Context(), limitParam(r))
	if err != nil {
		slog.Error("Failed to fetch most popular products", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, productList(products))
}

// GetNewest returns the most recently created products
func (h *CatalogHandler) GetNewest(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.Newest(r.Context(), limitParam(r))
	if err != nil {
		slog.Error("Failed to fetch newest products", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, productList(products))
}

// limitParam reads an optional ?limit= parameter; the query service applies
// the default for non-positive values.
func limitParam(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0
	}
	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return limit
}

// productList keeps empty results as [] rather than null in JSON.
func productList(products []*simplecatalog.Product) []*simplecatalog.Product {
	if products == nil {
		return []*simplecatalog.Product{}
	}
	return products
}
