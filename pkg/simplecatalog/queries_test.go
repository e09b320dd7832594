package simplecatalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/repo/memory"
)

// recordingMetrics captures every reported query duration.
type recordingMetrics struct {
	queries   []string
	durations []time.Duration
	err       error
}

func (m *recordingMetrics) RecordQueryDuration(ctx context.Context, query string, d time.Duration) error {
	m.queries = append(m.queries, query)
	m.durations = append(m.durations, d)
	return m.err
}

// seedProduct inserts a product directly into the repository.
func seedProduct(t *testing.T, repo *memory.Repository, name string, available bool, createdAt time.Time) *simplecatalog.Product {
	t.Helper()
	product := &simplecatalog.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name,
		PriceCents:  1000,
		Available:   available,
		FileKey:     uuid.New().String(),
		ImageKey:    uuid.New().String(),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, repo.CreateProduct(context.Background(), product))
	return product
}

func seedOrders(t *testing.T, repo *memory.Repository, productID uuid.UUID, priceCents int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.CreateOrder(context.Background(), &simplecatalog.Order{
			ProductID:  productID,
			PriceCents: priceCents,
		}))
	}
}

func newQueryFixture(t *testing.T, extra ...simplecatalog.Option) (simplecatalog.QueryService, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	options := append([]simplecatalog.Option{
		simplecatalog.WithRepository(repo),
	}, extra...)
	qs, err := simplecatalog.NewQueryService(options...)
	require.NoError(t, err)
	return qs, repo
}

func TestAvailabilityCounts(t *testing.T) {
	ctx := context.Background()
	qs, repo := newQueryFixture(t)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seedProduct(t, repo, "active", true, now)
	}
	for i := 0; i < 2; i++ {
		seedProduct(t, repo, "inactive", false, now)
	}

	counts, err := qs.AvailabilityCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Active)
	assert.Equal(t, int64(2), counts.Inactive)
}

func TestAvailabilityCountsEmpty(t *testing.T) {
	qs, _ := newQueryFixture(t)

	counts, err := qs.AvailabilityCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Active)
	assert.Zero(t, counts.Inactive)
}

func TestSalesSummary(t *testing.T) {
	ctx := context.Background()
	qs, repo := newQueryFixture(t)

	product := seedProduct(t, repo, "bundle", true, time.Now().UTC())
	seedOrders(t, repo, product.ID, 1999, 3)
	seedOrders(t, repo, product.ID, 500, 2)

	summary, err := qs.SalesSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3*1999+2*500), summary.TotalCents)
	assert.Equal(t, int64(5), summary.NumberOfSales)
}

func TestSalesSummaryEmpty(t *testing.T) {
	qs, _ := newQueryFixture(t)

	summary, err := qs.SalesSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCents)
	assert.Zero(t, summary.NumberOfSales)
}

func TestMostPopular(t *testing.T) {
	ctx := context.Background()
	qs, repo := newQueryFixture(t)

	now := time.Now().UTC()
	heavy := seedProduct(t, repo, "heavy", true, now)
	mid := seedProduct(t, repo, "mid", true, now)
	light := seedProduct(t, repo, "light", true, now)
	hidden := seedProduct(t, repo, "hidden", false, now)

	seedOrders(t, repo, heavy.ID, 100, 5)
	seedOrders(t, repo, mid.ID, 100, 3)
	seedOrders(t, repo, light.ID, 100, 1)
	// The unavailable product sells best but must never rank.
	seedOrders(t, repo, hidden.ID, 100, 9)

	products, err := qs.MostPopular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, heavy.ID, products[0].ID)
	assert.Equal(t, mid.ID, products[1].ID)

	products, err = qs.MostPopular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.True(t, p.Available)
	}
}

func TestMostPopularDefaultLimit(t *testing.T) {
	ctx := context.Background()
	qs, repo := newQueryFixture(t)

	now := time.Now().UTC()
	for i := 0; i < simplecatalog.DefaultListLimit+4; i++ {
		seedProduct(t, repo, "p", true, now)
	}

	products, err := qs.MostPopular(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, products, simplecatalog.DefaultListLimit)
}

func TestNewest(t *testing.T) {
	ctx := context.Background()
	qs, repo := newQueryFixture(t)

	base := time.Now().UTC()
	seedProduct(t, repo, "oldest", true, base.Add(-2*time.Hour))
	middle := seedProduct(t, repo, "middle", false, base.Add(-time.Hour))
	latest := seedProduct(t, repo, "latest", true, base)

	products, err := qs.Newest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, latest.ID, products[0].ID)
	// Newest ignores availability; the hidden product still lists.
	assert.Equal(t, middle.ID, products[1].ID)
}

func TestQueryDurationsRecorded(t *testing.T) {
	ctx := context.Background()
	sink := &recordingMetrics{}
	qs, repo := newQueryFixture(t, simplecatalog.WithQueryMetrics(sink))

	seedProduct(t, repo, "p", true, time.Now().UTC())

	_, err := qs.AvailabilityCounts(ctx)
	require.NoError(t, err)
	_, err = qs.SalesSummary(ctx)
	require.NoError(t, err)
	_, err = qs.MostPopular(ctx, 6)
	require.NoError(t, err)
	_, err = qs.Newest(ctx, 6)
	require.NoError(t, err)

	assert.Equal(t, []string{"availability_counts", "sales_summary", "most_popular", "newest"}, sink.queries)
	for _, d := range sink.durations {
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestMetricsFailureDoesNotFailQuery(t *testing.T) {
	ctx := context.Background()
	sink := &recordingMetrics{err: errors.New("sink down")}
	qs, repo := newQueryFixture(t, simplecatalog.WithQueryMetrics(sink))

	seedProduct(t, repo, "p", true, time.Now().UTC())

	counts, err := qs.AvailabilityCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Active)
	assert.Len(t, sink.queries, 1)
}
