package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Server:
//
//	PORT - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//
// Database:
//
//	DATABASE_URL - Connection string. "memory" or empty uses the in-memory
//	               repository; a postgresql:// URL selects Postgres.
//
// Storage (per namespace, FILES_ and IMAGES_ prefixes):
//
//	FILES_STORAGE_URL  - "memory://", "file:///path", "s3://bucket?region=r"
//	IMAGES_STORAGE_URL - same forms
//	IMAGES_URL_PREFIX  - public prefix for preview images (default "/products")
//
// Glue:
//
//	INVALIDATION_URL   - cache invalidation webhook endpoint
//	ADMIN_TOKEN_SECRET - HS256 secret for admin API tokens
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "INVALIDATION_URL"); ok {
			c.InvalidationURL = v
		}
		if v, ok := lookupEnv(prefix, "ADMIN_TOKEN_SECRET"); ok {
			c.AdminTokenSecret = v
		}
		if v, ok := lookupEnv(prefix, "QUERY_LOGGING"); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid QUERY_LOGGING value %q: %w", v, err)
			}
			c.EnableQueryLogging = b
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}

		if err := applyStorageEnv(prefix, "FILES", &c.Files); err != nil {
			return err
		}
		if err := applyStorageEnv(prefix, "IMAGES", &c.Images); err != nil {
			return err
		}
		if v, ok := lookupEnv(prefix, "IMAGES_URL_PREFIX"); ok && v != "" {
			c.Images.URLPrefix = v
		}

		return nil
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")

	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// applyStorageEnv applies one namespace's storage configuration from
// environment
func applyStorageEnv(prefix, namespace string, sc *StorageConfig) error {
	storageURL, hasURL := lookupEnv(prefix, namespace+"_STORAGE_URL")
	if !hasURL || storageURL == "" || storageURL == "memory://" {
		return nil
	}

	switch {
	case strings.HasPrefix(storageURL, "file://"):
		sc.Type = "fs"
		sc.BaseDir = strings.TrimPrefix(storageURL, "file://")
		return nil

	case strings.HasPrefix(storageURL, "s3://"):
		rest := strings.TrimPrefix(storageURL, "s3://")
		bucket, query, _ := strings.Cut(rest, "?")
		if bucket == "" {
			return fmt.Errorf("missing bucket in %s_STORAGE_URL", namespace)
		}
		sc.Type = "s3"
		sc.Bucket = bucket
		for _, kv := range strings.Split(query, "&") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			switch k {
			case "region":
				sc.Region = v
			case "endpoint":
				sc.Endpoint = v
			case "path_style":
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fmt.Errorf("invalid path_style in %s_STORAGE_URL: %w", namespace, err)
				}
				sc.UsePathStyle = b
			}
		}
		if v, ok := lookupEnv(prefix, "AWS_ACCESS_KEY_ID"); ok {
			sc.AccessKeyID = v
		}
		if v, ok := lookupEnv(prefix, "AWS_SECRET_ACCESS_KEY"); ok {
			sc.SecretAccessKey = v
		}
		return nil

	default:
		return fmt.Errorf("unsupported %s_STORAGE_URL format: %s", namespace, storageURL)
	}
}

func lookupEnv(prefix, key string) (string, bool) {
	if prefix != "" {
		if v, ok := os.LookupEnv(prefix + key); ok {
			return v, ok
		}
	}
	return os.LookupEnv(key)
}
