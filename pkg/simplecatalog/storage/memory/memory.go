package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// Backend is an in-memory implementation of the simplecatalog.BlobStore
// interface, backing one namespace per instance.
type Backend struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	urlPrefix string
}

// Option configures the in-memory backend.
type Option func(*Backend)

// WithURLPrefix makes the backend publicly addressable under the given
// prefix, as the images namespace is in production.
func WithURLPrefix(prefix string) Option {
	return func(b *Backend) {
		b.urlPrefix = prefix
	}
}

// New creates a new in-memory storage backend
func New(opts ...Option) *Backend {
	b := &Backend{
		blobs: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Upload stores the blob bytes under the given key
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.blobs[key] = data
	return nil
}

// Download returns the stored blob bytes
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.blobs[key]
	if !exists {
		return nil, simplecatalog.ErrBlobNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored blob
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.blobs[key]; !exists {
		return simplecatalog.ErrBlobNotFound
	}

	delete(b.blobs, key)
	return nil
}

// PublicURL returns the public URL when a prefix is configured
func (b *Backend) PublicURL(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.urlPrefix == "" {
		return "", fmt.Errorf("memory backend is not publicly addressable")
	}
	if _, exists := b.blobs[key]; !exists {
		return "", simplecatalog.ErrBlobNotFound
	}
	return fmt.Sprintf("%s/%s", b.urlPrefix, key), nil
}
