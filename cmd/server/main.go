/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bullion ledger server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load the persisted snapshot into the ledger book
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: bullion.db)
              Use ":memory:" for an in-memory database
  -lock-date  Reject transactions dated on or before this date
              (YYYY-MM-DD, default: none)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/bullion.db"

  # Lock entries up to the last filed period
  ./server -lock-date=2026-03-31

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurum/bullion-engine/api"
	"github.com/aurum/bullion-engine/ledger"
	"github.com/aurum/bullion-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "bullion.db", "SQLite database path")
	lockDate := flag.String("lock-date", "", "reject transactions dated on or before this date (YYYY-MM-DD)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Build the ledger book
	var opts []ledger.Option
	if *lockDate != "" {
		d, err := ledger.ParseDate(*lockDate)
		if err != nil {
			log.Fatalf("Invalid -lock-date: %v", err)
		}
		opts = append(opts, ledger.WithLockDate(d))
	}
	book := ledger.NewBook(opts...)

	// Load persisted snapshot
	txs, lots, err := store.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	book.Restore(txs, lots)
	log.Printf("Loaded %d transactions, %d lots", len(txs), len(lots))

	// Create router
	handler := api.NewHandler(book, store)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
