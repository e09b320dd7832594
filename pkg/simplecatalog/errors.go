package simplecatalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrProductNotFound indicates a product was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrBlobNotFound indicates a blob was not found in its namespace
	ErrBlobNotFound = errors.New("blob not found")
)

// FieldErrors reports per-field validation failures. A request that fails
// validation produces no side effects.
type FieldErrors map[string][]string

// Add records a validation message for a field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid input: %s", strings.Join(fields, ", "))
}

// ProductError represents an error related to a catalog operation on a product
type ProductError struct {
	ProductID uuid.UUID
	Op        string
	Err       error
}

func (e *ProductError) Error() string {
	return fmt.Sprintf("product operation %s failed for product %s: %v", e.Op, e.ProductID, e.Err)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Namespace Namespace
	Key       string
	Op        string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s in namespace %s: %v", e.Op, e.Key, e.Namespace, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
