package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/simple-media-migrate/internal/ledger"
	"github.com/tendant/simple-media-migrate/internal/metrics"
	"github.com/tendant/simple-media-migrate/internal/migrate"
	"github.com/tendant/simple-media-migrate/internal/repository"
	"github.com/tendant/simple-media-migrate/internal/storage"
	"github.com/tendant/simple-media-migrate/internal/transfer"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	// Configuration from environment
	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		log.Fatalf("MEDIA_ROOT is required")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		log.Fatalf("BUCKET_NAME is required")
	}

	interval := 20 * time.Second
	if v := os.Getenv("INTERVAL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 1 {
			log.Fatalf("Invalid INTERVAL: %q", v)
		}
		interval = time.Duration(seconds) * time.Second
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Source store over the sharded media directory
	source, err := storage.NewSourceStore(mediaRoot)
	if err != nil {
		log.Fatalf("Failed to open media root: %v", err)
	}

	// Database connection
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Destination bucket via the default AWS credential chain
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dest := storage.NewS3Store(s3.NewFromConfig(awsCfg), bucketName)

	observer, err := metrics.NewObserver(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	tracker, err := ledger.NewTracker(db)
	if err != nil {
		log.Fatalf("Failed to initialize migration ledger: %v", err)
	}

	migrator := migrate.New(
		repository.New(db),
		transfer.NewUploader(source, dest),
		tracker,
		observer,
	)
	runner := migrate.NewRunner(migrator, interval)

	// Create HTTP server for health and metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Printf("✓ media migrator ready on %s", httpAddr)
	log.Printf("  Media root: %s", mediaRoot)
	log.Printf("  Bucket: %s", bucketName)
	log.Printf("  Interval: %s", interval)

	// Run the migration loop in a goroutine
	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
	}()

	// Wait for loop completion or interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-runErr:
		if err != nil {
			log.Printf("Migration failed: %v", err)
			exitCode = 1
		} else {
			log.Printf("Migration complete")
		}
	case <-quit:
		log.Println("Shutting down...")
		cancel()
		// Let the in-flight submission finish; cancellation only takes
		// effect between records.
		if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Migration failed during shutdown: %v", err)
			exitCode = 1
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
	os.Exit(exitCode)
}

// handleHealth returns health status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}
