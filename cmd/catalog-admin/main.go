package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/repo/memory"
	repopg "github.com/tendant/simple-catalog/pkg/simplecatalog/repo/postgres"
)

const usage = `Simple Catalog Admin CLI

A lightweight admin tool for the product catalog that only requires database access.

USAGE:
  catalog-admin <command> [options]

COMMANDS:
  list              List products newest first
  counts            Show product counts by availability
  sales             Show the sales summary
  popular           Show the most popular available products
  set-availability  Toggle a product's purchasable flag
  token             Mint an admin API bearer token

ENVIRONMENT VARIABLES:
  DATABASE_URL        PostgreSQL connection string (required for postgres)
  DATABASE_TYPE       Database type: postgres or memory (default: memory)
  ADMIN_TOKEN_SECRET  HS256 secret used by the token command

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # List the newest products
  catalog-admin list --limit=20

  # Availability counts and sales totals
  catalog-admin counts
  catalog-admin sales --json

  # Top sellers
  catalog-admin popular --limit=6

  # Put a product on sale
  catalog-admin set-availability --id=550e8400-e29b-41d4-a716-446655440000 --available=true

  # Mint a bearer token for the admin HTTP API
  catalog-admin token --ttl=24h

OPTIONS:
  --limit=<n>        Maximum results (list/popular, default: 6)
  --id=<uuid>        Product ID (set-availability)
  --available=<bool> New availability flag (set-availability)
  --ttl=<duration>   Token lifetime (token, default: 1h)
  --json             Output as JSON
`

type Config struct {
	DatabaseType     string `env:"DATABASE_TYPE" env-default:"memory"`
	DatabaseURL      string `env:"DATABASE_URL" env-default:""`
	AdminTokenSecret string `env:"ADMIN_TOKEN_SECRET" env-default:""`
}

type flags struct {
	limit     int
	id        string
	available string
	ttl       time.Duration
	useJSON   bool
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage)
		os.Exit(0)
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	opts := parseFlags(os.Args[2:])
	ctx := context.Background()

	if command == "token" {
		handleToken(config, opts)
		return
	}

	repo, err := createRepository(ctx, config)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	switch command {
	case "list":
		handleList(ctx, repo, opts)
	case "counts":
		handleCounts(ctx, repo, opts)
	case "sales":
		handleSales(ctx, repo, opts)
	case "popular":
		handlePopular(ctx, repo, opts)
	case "set-availability":
		handleSetAvailability(ctx, repo, opts)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func createRepository(ctx context.Context, config Config) (simplecatalog.Repository, error) {
	switch config.DatabaseType {
	case "postgres":
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres")
		}

		poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		return repopg.NewWithPool(pool), nil

	case "memory":
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s (use 'postgres' or 'memory')", config.DatabaseType)
	}
}

func parseFlags(args []string) flags {
	opts := flags{
		limit: simplecatalog.DefaultListLimit,
		ttl:   time.Hour,
	}

	for _, arg := range args {
		if arg == "--json" {
			opts.useJSON = true
			continue
		}

		key, value := parseFlag(arg)
		switch key {
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				opts.limit = n
			}
		case "id":
			opts.id = value
		case "available":
			opts.available = value
		case "ttl":
			if d, err := time.ParseDuration(value); err == nil {
				opts.ttl = d
			}
		}
	}

	return opts
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleList(ctx context.Context, repo simplecatalog.Repository, opts flags) {
	products, err := repo.Newest(ctx, opts.limit)
	if err != nil {
		log.Fatalf("Failed to list products: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tPRICE\tAVAILABLE\tCREATED\n")
	for _, product := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			product.ID.String()[:8]+"...",
			truncate(product.Name, 24),
			formatCents(product.PriceCents),
			product.Available,
			product.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d\n", len(products))
}

func handleCounts(ctx context.Context, repo simplecatalog.Repository, opts flags) {
	counts, err := repo.CountByAvailability(ctx)
	if err != nil {
		log.Fatalf("Failed to count products: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(counts, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Active:   %d\nInactive: %d\n", counts.Active, counts.Inactive)
}

func handleSales(ctx context.Context, repo simplecatalog.Repository, opts flags) {
	summary, err := repo.OrderTotals(ctx)
	if err != nil {
		log.Fatalf("Failed to summarize sales: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Sales:   %d\nRevenue: %s\n", summary.NumberOfSales, formatCents(summary.TotalCents))
}

func handlePopular(ctx context.Context, repo simplecatalog.Repository, opts flags) {
	products, err := repo.MostPopular(ctx, opts.limit)
	if err != nil {
		log.Fatalf("Failed to rank products: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tID\tNAME\tPRICE\n")
	for i, product := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1,
			product.ID.String()[:8]+"...",
			truncate(product.Name, 24),
			formatCents(product.PriceCents),
		)
	}
	w.Flush()
}

func handleSetAvailability(ctx context.Context, repo simplecatalog.Repository, opts flags) {
	id, err := uuid.Parse(opts.id)
	if err != nil {
		log.Fatalf("Invalid --id: %v", err)
	}
	available, err := strconv.ParseBool(opts.available)
	if err != nil {
		log.Fatalf("Invalid --available: %v", err)
	}

	if err := repo.SetAvailability(ctx, id, available); err != nil {
		log.Fatalf("Failed to set availability: %v", err)
	}

	fmt.Printf("Product %s availability set to %t\n", id, available)
}

func handleToken(config Config, opts flags) {
	if config.AdminTokenSecret == "" {
		log.Fatal("ADMIN_TOKEN_SECRET environment variable is required for the token command")
	}

	tokenAuth := jwtauth.New("HS256", []byte(config.AdminTokenSecret), nil)
	now := time.Now()
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub": "catalog-admin",
		"iat": now.Unix(),
		"exp": now.Add(opts.ttl).Unix(),
	})
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}

	fmt.Println(tokenString)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
