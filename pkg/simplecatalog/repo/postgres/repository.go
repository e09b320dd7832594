package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecatalog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// psql builds aggregate queries with Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const productColumns = `id, name, description, price_cents, is_available_for_purchase,
	       file_key, image_key, created_at, updated_at`

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplecatalog.ErrProductNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *simplecatalog.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, price_cents, is_available_for_purchase,
			file_key, image_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Available, product.FileKey, product.ImageKey,
		product.CreatedAt, product.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create product", err)
	}

	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*simplecatalog.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecatalog.ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *simplecatalog.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, price_cents = $4,
			is_available_for_purchase = $5, file_key = $6, image_key = $7,
			updated_at = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Available, product.FileKey, product.ImageKey, product.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecatalog.ErrProductNotFound
	}

	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (*simplecatalog.Product, error) {
	// RETURNING hands back the stored blob keys in the same statement that
	// removes the record.
	query := `
		DELETE FROM products WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecatalog.ErrProductNotFound
		}
		return nil, r.handlePostgresError("delete product", err)
	}

	return product, nil
}

func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `
		UPDATE products SET is_available_for_purchase = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, available)
	if err != nil {
		return r.handlePostgresError("set availability", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecatalog.ErrProductNotFound
	}

	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*simplecatalog.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Order intake

func (r *Repository) CreateOrder(ctx context.Context, order *simplecatalog.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO orders (id, product_id, price_cents, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		order.ID, order.ProductID, order.PriceCents, order.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return simplecatalog.ErrProductNotFound
		}
		return r.handlePostgresError("create order", err)
	}

	return nil
}

// Aggregate queries

func (r *Repository) CountByAvailability(ctx context.Context) (*simplecatalog.AvailabilityCounts, error) {
	query, args, err := psql.
		Select(
			"COUNT(*) FILTER (WHERE is_available_for_purchase)",
			"COUNT(*) FILTER (WHERE NOT is_available_for_purchase)",
		).
		From("products").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building availability count query: %w", err)
	}

	var counts simplecatalog.AvailabilityCounts
	if err := r.db.QueryRow(ctx, query, args...).Scan(&counts.Active, &counts.Inactive); err != nil {
		return nil, r.handlePostgresError("count by availability", err)
	}

	return &counts, nil
}

func (r *Repository) OrderTotals(ctx context.Context) (*simplecatalog.SalesSummary, error) {
	query, args, err := psql.
		Select("COALESCE(SUM(price_cents), 0)", "COUNT(*)").
		From("orders").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building order totals query: %w", err)
	}

	var summary simplecatalog.SalesSummary
	if err := r.db.QueryRow(ctx, query, args...).Scan(&summary.TotalCents, &summary.NumberOfSales); err != nil {
		return nil, r.handlePostgresError("order totals", err)
	}

	return &summary, nil
}

func (r *Repository) MostPopular(ctx context.Context, limit int) ([]*simplecatalog.Product, error) {
	query, args, err := psql.
		Select(
			"p.id", "p.name", "p.description", "p.price_cents",
			"p.is_available_for_purchase", "p.file_key", "p.image_key",
			"p.created_at", "p.updated_at",
		).
		From("products p").
		LeftJoin("orders o ON o.product_id = p.id").
		Where(sq.Eq{"p.is_available_for_purchase": true}).
		GroupBy("p.id").
		OrderBy("COUNT(o.id) DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building most popular query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("most popular", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *Repository) Newest(ctx context.Context, limit int) ([]*simplecatalog.Product, error) {
	query, args, err := psql.
		Select(
			"id", "name", "description", "price_cents",
			"is_available_for_purchase", "file_key", "image_key",
			"created_at", "updated_at",
		).
		From("products").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building newest query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("newest", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Scan helpers

func scanProduct(row pgx.Row) (*simplecatalog.Product, error) {
	var product simplecatalog.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.PriceCents,
		&product.Available, &product.FileKey, &product.ImageKey,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func scanProducts(rows pgx.Rows) ([]*simplecatalog.Product, error) {
	var products []*simplecatalog.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
