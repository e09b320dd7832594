package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	repomemory "github.com/tendant/simple-catalog/pkg/simplecatalog/repo/memory"
	repopg "github.com/tendant/simple-catalog/pkg/simplecatalog/repo/postgres"
	fsstorage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/fs"
	memorystorage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/memory"
	s3storage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		Files: StorageConfig{
			Type: "memory",
		},
		Images: StorageConfig{
			Type:      "memory",
			URLPrefix: "/products",
		},
		EnableQueryLogging: true,
	}
}

// ServerConfig represents server configuration for the simple-catalog service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Blob storage, one config per namespace
	Files  StorageConfig
	Images StorageConfig

	// Cache invalidation webhook; empty disables notification
	InvalidationURL string

	// Admin API token secret (HS256); empty disables admin auth
	AdminTokenSecret string

	// Report query durations through the structured logger
	EnableQueryLogging bool
}

// StorageConfig represents configuration for one blob namespace
type StorageConfig struct {
	Type      string // "memory", "fs", "s3"
	BaseDir   string // fs only
	URLPrefix string // public URL prefix (images namespace)

	// S3 options
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	for _, sc := range []StorageConfig{c.Files, c.Images} {
		switch sc.Type {
		case "memory":
		case "fs":
			if sc.BaseDir == "" {
				return errors.New("base_dir is required for fs storage")
			}
		case "s3":
			if sc.Bucket == "" {
				return errors.New("bucket is required for s3 storage")
			}
		default:
			return fmt.Errorf("unsupported storage type: %s", sc.Type)
		}
	}

	return nil
}

// BuildService creates the lifecycle Service from the server configuration
func (c *ServerConfig) BuildService() (simplecatalog.Service, error) {
	options, err := c.buildOptions()
	if err != nil {
		return nil, err
	}
	return simplecatalog.New(options...)
}

// BuildQueryService creates the read-only QueryService from the server
// configuration
func (c *ServerConfig) BuildQueryService() (simplecatalog.QueryService, error) {
	options, err := c.buildOptions()
	if err != nil {
		return nil, err
	}
	return simplecatalog.NewQueryService(options...)
}

func (c *ServerConfig) buildOptions() ([]simplecatalog.Option, error) {
	var options []simplecatalog.Option

	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, simplecatalog.WithRepository(repo))

	fileStore, err := c.buildBlobStore(c.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to build files storage: %w", err)
	}
	options = append(options, simplecatalog.WithBlobStore(simplecatalog.NamespaceFiles, fileStore))

	imageStore, err := c.buildBlobStore(c.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to build images storage: %w", err)
	}
	options = append(options, simplecatalog.WithBlobStore(simplecatalog.NamespaceImages, imageStore))

	if c.InvalidationURL != "" {
		options = append(options, simplecatalog.WithInvalidator(simplecatalog.NewWebhookInvalidator(c.InvalidationURL)))
	}

	if c.EnableQueryLogging {
		options = append(options, simplecatalog.WithQueryMetrics(simplecatalog.NewSlogQueryMetrics(nil)))
	}

	return options, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (simplecatalog.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildBlobStore creates a BlobStore based on one namespace configuration
func (c *ServerConfig) buildBlobStore(sc StorageConfig) (simplecatalog.BlobStore, error) {
	switch sc.Type {
	case "memory":
		if sc.URLPrefix != "" {
			return memorystorage.New(memorystorage.WithURLPrefix(sc.URLPrefix)), nil
		}
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   sc.BaseDir,
			URLPrefix: sc.URLPrefix,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          sc.Region,
			Bucket:          sc.Bucket,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			Endpoint:        sc.Endpoint,
			UsePathStyle:    sc.UsePathStyle,
			PublicURLPrefix: sc.URLPrefix,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", sc.Type)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
