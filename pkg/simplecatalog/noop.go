package simplecatalog

import (
	"context"
	"time"
)

// NoopInvalidator is a no-operation implementation of Invalidator.
// Useful when no cache sits in front of the catalog, and for testing.
type NoopInvalidator struct{}

// NewNoopInvalidator creates a new no-operation invalidator
func NewNoopInvalidator() Invalidator {
	return &NoopInvalidator{}
}

// Invalidate does nothing and returns nil
func (n *NoopInvalidator) Invalidate(ctx context.Context, path string) error {
	return nil
}

// NoopQueryMetrics is a no-operation implementation of QueryMetrics.
type NoopQueryMetrics struct{}

// NewNoopQueryMetrics creates a new no-operation metrics sink
func NewNoopQueryMetrics() QueryMetrics {
	return &NoopQueryMetrics{}
}

// RecordQueryDuration does nothing and returns nil
func (n *NoopQueryMetrics) RecordQueryDuration(ctx context.Context, query string, d time.Duration) error {
	return nil
}
