package simplecatalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// WebhookInvalidator notifies an external cache (e.g. a frontend
// revalidation endpoint) that a view path went stale. Callers treat
// delivery as at-most-effort and discard errors.
type WebhookInvalidator struct {
	endpoint string
	client   *http.Client
}

// NewWebhookInvalidator creates an invalidator posting to the given endpoint.
func NewWebhookInvalidator(endpoint string) *WebhookInvalidator {
	return &WebhookInvalidator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Invalidate posts {"path": path} to the configured endpoint.
func (w *WebhookInvalidator) Invalidate(ctx context.Context, path string) error {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("invalidation endpoint returned %s", resp.Status)
	}
	return nil
}

// SlogQueryMetrics reports query durations to a structured logger. It stands
// in for a real metrics backend in development deployments.
type SlogQueryMetrics struct {
	logger *slog.Logger
}

// NewSlogQueryMetrics creates a metrics sink logging through logger.
// A nil logger uses the default.
func NewSlogQueryMetrics(logger *slog.Logger) *SlogQueryMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogQueryMetrics{logger: logger}
}

// RecordQueryDuration logs the query name and duration.
func (m *SlogQueryMetrics) RecordQueryDuration(ctx context.Context, query string, d time.Duration) error {
	m.logger.InfoContext(ctx, "catalog query", "query", query, "duration_ms", d.Milliseconds())
	return nil
}
