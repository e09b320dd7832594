// Package simplecatalog provides a reusable library for managing a catalog
// of purchasable digital products with pluggable repository and blob storage
// backends.
//
// Each product pairs catalog metadata (name, description, price) with two
// independently stored binary assets: the purchasable file (private
// namespace) and a public preview image. The Service interface orchestrates
// product create/update/delete across both stores; the QueryService exposes
// read-only aggregations (availability counts, sales totals, popularity and
// recency rankings) derived from order data. Implementations of repositories
// (memory, Postgres) and blob stores (memory, filesystem, S3) are provided
// under subpackages.
//
// Consistency Model
//
// Blob writes and the catalog mutation of a single operation are not covered
// by a cross-store transaction. A catalog write that fails after its blob
// writes succeeded leaves orphaned blobs behind; this is deliberate and
// logged rather than rolled back. Concurrent writes against the same product
// id are not serialized by this package; callers needing strict per-product
// consistency must coordinate externally.
package simplecatalog
