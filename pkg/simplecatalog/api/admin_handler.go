package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// maxUploadBytes caps multipart memory use; payloads are buffered, not
// streamed.
const maxUploadBytes = 32 << 20

// AdminHandler serves the product write endpoints.
type AdminHandler struct {
	service simplecatalog.Service
}

// NewAdminHandler creates a new admin product handler
func NewAdminHandler(service simplecatalog.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns the router for admin product endpoints
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateProduct)
	r.Get("/{id}", h.GetProduct)
	r.Put("/{id}", h.UpdateProduct)
	r.Delete("/{id}", h.DeleteProduct)
	r.Put("/{id}/availability", h.SetAvailability)
	r.Get("/{id}/file", h.DownloadFile)
	return r
}

// CreateProduct adds a product from a multipart form with name, description,
// price_cents, file and image fields
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	priceCents, priceErr := parsePrice(r.FormValue(simplecatalog.FieldPriceCents))
	file, err := formUpload(r, simplecatalog.FieldFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	image, err := formUpload(r, simplecatalog.FieldImage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := simplecatalog.CreateProductRequest{
		Name:        r.FormValue(simplecatalog.FieldName),
		Description: r.FormValue(simplecatalog.FieldDescription),
		PriceCents:  priceCents,
	}
	if file != nil {
		req.File = *file
	}
	if image != nil {
		req.Image = *image
	}

	if priceErr != nil {
		renderFieldErrors(w, r, withPriceParseError(req.Validate()))
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.renderError(w, r, "create product", err)
		return
	}

	slog.Info("Product created", "product_id", product.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

// GetProduct returns a single product record
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, "get product", err)
		return
	}

	render.JSON(w, r, product)
}

// UpdateProduct updates metadata and optionally replaces payloads
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	priceCents, priceErr := parsePrice(r.FormValue(simplecatalog.FieldPriceCents))

	file, err := formUpload(r, simplecatalog.FieldFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	image, err := formUpload(r, simplecatalog.FieldImage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := simplecatalog.UpdateProductRequest{
		Name:        r.FormValue(simplecatalog.FieldName),
		Description: r.FormValue(simplecatalog.FieldDescription),
		PriceCents:  priceCents,
		File:        file,
		Image:       image,
	}

	if priceErr != nil {
		renderFieldErrors(w, r, withPriceParseError(req.Validate()))
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.renderError(w, r, "update product", err)
		return
	}

	slog.Info("Product updated", "product_id", product.ID)
	render.JSON(w, r, product)
}

// DeleteProduct removes the product record and both of its blobs
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	deletedID, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, "delete product", err)
		return
	}

	slog.Info("Product deleted", "product_id", deletedID)
	render.JSON(w, r, map[string]string{"id": deletedID.String()})
}

// SetAvailability flips the availability flag from a form-encoded body
func (h *AdminHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	available, err := strconv.ParseBool(r.FormValue("available"))
	if err != nil {
		http.Error(w, "Invalid 'available' value", http.StatusBadRequest)
		return
	}

	if err := h.service.SetAvailability(r.Context(), id, available); err != nil {
		h.renderError(w, r, "set availability", err)
		return
	}

	slog.Info("Product availability set", "product_id", id, "available", available)
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile streams the purchasable file from the private namespace
func (h *AdminHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	rc, err := h.service.DownloadFile(r.Context(), id)
	if err != nil {
		h.renderError(w, r, "download file", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.String()))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream file", "product_id", id, "error", err)
	}
}

// Helpers

func productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid product ID", "id", idStr, "error", err)
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parsePrice(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

// formUpload reads one multipart file field. A missing field returns nil
// without error so update requests can omit replacement payloads.
func formUpload(r *http.Request, field string) (*simplecatalog.FileUpload, error) {
	fh, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s upload: %w", field, err)
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		return nil, fmt.Errorf("reading %s upload: %w", field, err)
	}

	return &simplecatalog.FileUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// withPriceParseError merges a non-numeric price into the request's other
// validation failures so every failing field reports at once. The parse
// failure replaces whatever the zero price would have reported for the
// price field.
func withPriceParseError(validationErr error) simplecatalog.FieldErrors {
	errs := make(simplecatalog.FieldErrors)
	var fieldErrs simplecatalog.FieldErrors
	if errors.As(validationErr, &fieldErrs) {
		errs = fieldErrs
	}
	errs[simplecatalog.FieldPriceCents] = []string{"Expected number"}
	return errs
}

func renderFieldErrors(w http.ResponseWriter, r *http.Request, errs simplecatalog.FieldErrors) {
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, errs)
}

func (h *AdminHandler) renderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fieldErrs simplecatalog.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		renderFieldErrors(w, r, fieldErrs)
	case errors.Is(err, simplecatalog.ErrProductNotFound):
		http.Error(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, simplecatalog.ErrBlobNotFound):
		http.Error(w, "Asset not found", http.StatusNotFound)
	default:
		slog.Error("Admin operation failed", "op", op, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
