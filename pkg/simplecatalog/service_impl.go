package simplecatalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service and QueryService interfaces
type service struct {
	repository  Repository
	stores      map[Namespace]BlobStore
	invalidator Invalidator
	metrics     QueryMetrics
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore registers the blob store backing a namespace
func WithBlobStore(ns Namespace, store BlobStore) Option {
	return func(s *service) {
		if s.stores == nil {
			s.stores = make(map[Namespace]BlobStore)
		}
		s.stores[ns] = store
	}
}

// WithInvalidator sets the cache invalidation notifier
func WithInvalidator(inv Invalidator) Option {
	return func(s *service) {
		s.invalidator = inv
	}
}

// WithQueryMetrics sets the query duration sink
func WithQueryMetrics(m QueryMetrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// New creates a new lifecycle service. A repository and blob stores for both
// namespaces are required.
func New(options ...Option) (Service, error) {
	s, err := build(options...)
	if err != nil {
		return nil, err
	}
	for _, ns := range []Namespace{NamespaceFiles, NamespaceImages} {
		if _, ok := s.stores[ns]; !ok {
			return nil, fmt.Errorf("blob store for namespace %q is required", ns)
		}
	}
	return s, nil
}

// NewQueryService creates a read-only query service. Only a repository is
// required; a metrics sink is optional.
func NewQueryService(options ...Option) (QueryService, error) {
	return build(options...)
}

func build(options ...Option) (*service, error) {
	s := &service{
		stores: make(map[Namespace]BlobStore),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// blobRef names one stored blob for orphan reporting.
type blobRef struct {
	namespace Namespace
	key       string
}

// Lifecycle operations

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fileKey, err := s.writeBlob(ctx, NamespaceFiles, req.File)
	if err != nil {
		return nil, err
	}
	imageKey, err := s.writeBlob(ctx, NamespaceImages, req.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Available:   false,
		FileKey:     fileKey,
		ImageKey:    imageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	written := []blobRef{
		{NamespaceFiles, fileKey},
		{NamespaceImages, imageKey},
	}
	err = s.finishCatalogWrite(ctx, "create", written, func(ctx context.Context) error {
		return s.repository.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, &ProductError{ProductID: product.ID, Op: "create", Err: err}
	}

	s.invalidateListings(ctx)
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	var written []blobRef

	if req.File != nil && !req.File.Empty() {
		key, err := s.replaceAsset(ctx, NamespaceFiles, product.FileKey, *req.File)
		if err != nil {
			return nil, err
		}
		product.FileKey = key
		written = append(written, blobRef{NamespaceFiles, key})
	}
	if req.Image != nil && !req.Image.Empty() {
		key, err := s.replaceAsset(ctx, NamespaceImages, product.ImageKey, *req.Image)
		if err != nil {
			return nil, err
		}
		product.ImageKey = key
		written = append(written, blobRef{NamespaceImages, key})
	}

	product.Name = req.Name
	product.Description = req.Description
	product.PriceCents = req.PriceCents
	// Any content change requires re-approval before the product can be
	// purchased again.
	product.Available = false
	product.UpdatedAt = time.Now().UTC()

	err = s.finishCatalogWrite(ctx, "update", written, func(ctx context.Context) error {
		return s.repository.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, &ProductError{ProductID: id, Op: "update", Err: err}
	}

	s.invalidateListings(ctx)
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	// The catalog record goes first so its stored keys are captured; a blob
	// deletion failure after this point is terminal, the record is gone.
	product, err := s.repository.DeleteProduct(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	refs := []blobRef{
		{NamespaceFiles, product.FileKey},
		{NamespaceImages, product.ImageKey},
	}
	for _, ref := range refs {
		store, err := s.store(ref.namespace)
		if err != nil {
			return uuid.Nil, err
		}
		if err := store.Delete(ctx, ref.key); err != nil {
			serr := &StorageError{Namespace: ref.namespace, Key: ref.key, Op: "delete", Err: err}
			slog.Error("blob deletion failed after catalog record removal",
				"product_id", id, "namespace", ref.namespace, "key", ref.key, "error", err)
			return uuid.Nil, serr
		}
	}

	s.invalidateListings(ctx)
	return product.ID, nil
}

func (s *service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.repository.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repository.GetProduct(ctx, id)
}

func (s *service) DownloadFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	return s.download(ctx, id, NamespaceFiles)
}

func (s *service) DownloadImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	return s.download(ctx, id, NamespaceImages)
}

func (s *service) ImageURL(ctx context.Context, id uuid.UUID) (string, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return "", err
	}
	store, err := s.store(NamespaceImages)
	if err != nil {
		return "", err
	}
	url, err := store.PublicURL(ctx, product.ImageKey)
	if err != nil {
		return "", &StorageError{Namespace: NamespaceImages, Key: product.ImageKey, Op: "public_url", Err: err}
	}
	return url, nil
}

// Internal helpers

func (s *service) store(ns Namespace) (BlobStore, error) {
	store, ok := s.stores[ns]
	if !ok {
		return nil, fmt.Errorf("no blob store registered for namespace %q", ns)
	}
	return store, nil
}

func (s *service) writeBlob(ctx context.Context, ns Namespace, upload FileUpload) (string, error) {
	store, err := s.store(ns)
	if err != nil {
		return "", err
	}
	key := NewBlobKey(upload.FileName)
	if err := store.Upload(ctx, key, bytes.NewReader(upload.Data)); err != nil {
		return "", &StorageError{Namespace: ns, Key: key, Op: "upload", Err: err}
	}
	return key, nil
}

// replaceAsset deletes the old blob and writes the replacement under a fresh
// key. The old blob is gone before the new one exists: a concurrent read in
// that window sees ErrBlobNotFound.
func (s *service) replaceAsset(ctx context.Context, ns Namespace, oldKey string, upload FileUpload) (string, error) {
	store, err := s.store(ns)
	if err != nil {
		return "", err
	}
	if err := store.Delete(ctx, oldKey); err != nil {
		return "", &StorageError{Namespace: ns, Key: oldKey, Op: "delete", Err: err}
	}
	return s.writeBlob(ctx, ns, upload)
}

// finishCatalogWrite runs the catalog mutation that concludes a multi-step
// write. Blob writes that already happened are not rolled back on failure:
// the keys in written are orphaned, reported here so an out-of-band sweep
// can reclaim them. A future compensation step belongs in this helper, not
// at the call sites.
func (s *service) finishCatalogWrite(ctx context.Context, op string, written []blobRef, mutate func(context.Context) error) error {
	err := mutate(ctx)
	if err == nil {
		return nil
	}
	for _, ref := range written {
		slog.Warn("catalog write failed, blob orphaned",
			"op", op, "namespace", ref.namespace, "key", ref.key, "error", err)
	}
	return err
}

// invalidateListings signals every listing view. Delivery failures are
// dropped; invalidation must never fail the triggering write.
func (s *service) invalidateListings(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	for _, path := range ListingPaths {
		if err := s.invalidator.Invalidate(ctx, path); err != nil {
			slog.Warn("cache invalidation dropped", "path", path, "error", err)
		}
	}
}

func (s *service) download(ctx context.Context, id uuid.UUID, ns Namespace) (io.ReadCloser, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	key := product.FileKey
	if ns == NamespaceImages {
		key = product.ImageKey
	}
	store, err := s.store(ns)
	if err != nil {
		return nil, err
	}
	rc, err := store.Download(ctx, key)
	if err != nil {
		return nil, &StorageError{Namespace: ns, Key: key, Op: "download", Err: err}
	}
	return rc, nil
}
