package simplecatalog

import (
	"context"
	"log/slog"
	"time"
)

// Query operations. Each measures its own wall-clock duration and reports it
// through observe; the repository does the actual aggregation.

func (s *service) AvailabilityCounts(ctx context.Context) (*AvailabilityCounts, error) {
	defer s.observe(ctx, "availability_counts", time.Now())
	return s.repository.CountByAvailability(ctx)
}

func (s *service) SalesSummary(ctx context.Context) (*SalesSummary, error) {
	defer s.observe(ctx, "sales_summary", time.Now())
	return s.repository.OrderTotals(ctx)
}

func (s *service) MostPopular(ctx context.Context, limit int) ([]*Product, error) {
	defer s.observe(ctx, "most_popular", time.Now())
	return s.repository.MostPopular(ctx, normalizeLimit(limit))
}

func (s *service) Newest(ctx context.Context, limit int) ([]*Product, error) {
	defer s.observe(ctx, "newest", time.Now())
	return s.repository.Newest(ctx, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// observe reports a query duration to the metrics sink. Sink failures are
// dropped; metrics must never fail a read.
func (s *service) observe(ctx context.Context, query string, start time.Time) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordQueryDuration(ctx, query, time.Since(start)); err != nil {
		slog.Debug("query metrics dropped", "query", query, "error", err)
	}
}
