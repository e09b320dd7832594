package simplecatalog

// Request DTOs

// FileUpload carries one uploaded payload. ContentType is the declared media
// type; it is only enforced for image uploads.
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no payload bytes.
func (u FileUpload) Empty() bool {
	return len(u.Data) == 0
}

// CreateProductRequest contains parameters for creating a product.
// Both payloads are required.
type CreateProductRequest struct {
	Name        string
	Description string
	PriceCents  int64
	File        FileUpload
	Image       FileUpload
}

// UpdateProductRequest contains parameters for updating a product. Metadata
// fields are required as on create. A nil or empty payload keeps the stored
// blob; a non-empty payload replaces it under a fresh key.
type UpdateProductRequest struct {
	Name        string
	Description string
	PriceCents  int64
	File        *FileUpload
	Image       *FileUpload
}
