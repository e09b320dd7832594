package simplecatalog

import "strings"

// Field names used in validation errors. They match the multipart form field
// names accepted by the admin API.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPriceCents  = "price_cents"
	FieldFile        = "file"
	FieldImage       = "image"
)

const (
	msgRequired   = "Required"
	msgMinPrice   = "Number must be greater than or equal to 1"
	msgImageMedia = "Invalid input: expected an image media type"
)

// Validate checks the request and returns FieldErrors on failure.
func (r CreateProductRequest) Validate() error {
	errs := validateMetadata(r.Name, r.Description, r.PriceCents)

	if r.File.Empty() {
		errs.Add(FieldFile, msgRequired)
	}
	if r.Image.Empty() {
		errs.Add(FieldImage, msgRequired)
	} else if !isImageType(r.Image.ContentType) {
		errs.Add(FieldImage, msgImageMedia)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the request and returns FieldErrors on failure. Payloads
// are optional; a present non-empty image must still declare an image media
// type.
func (r UpdateProductRequest) Validate() error {
	errs := validateMetadata(r.Name, r.Description, r.PriceCents)

	if r.Image != nil && !r.Image.Empty() && !isImageType(r.Image.ContentType) {
		errs.Add(FieldImage, msgImageMedia)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateMetadata(name, description string, priceCents int64) FieldErrors {
	errs := make(FieldErrors)
	if name == "" {
		errs.Add(FieldName, msgRequired)
	}
	if description == "" {
		errs.Add(FieldDescription, msgRequired)
	}
	if priceCents < 1 {
		errs.Add(FieldPriceCents, msgMinPrice)
	}
	return errs
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
