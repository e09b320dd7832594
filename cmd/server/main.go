package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-catalog/pkg/simplecatalog/api"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/config"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	// Build catalog service from configuration
	svc, err := cfg.BuildService()
	if err != nil {
		log.Fatalf("Failed to build catalog service: %v", err)
	}

	queries, err := cfg.BuildQueryService()
	if err != nil {
		log.Fatalf("Failed to build query service: %v", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.NewRouter(svc, queries, cfg.AdminTokenSecret),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Simple Catalog Server starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		log.Printf("Database: %s", cfg.DatabaseType)
		log.Printf("Files storage: %s, images storage: %s", cfg.Files.Type, cfg.Images.Type)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
