package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/skcajs/autolens/internal/api"
	"github.com/skcajs/autolens/internal/config"
	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/monitoring"
	"github.com/skcajs/autolens/internal/webviz"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (request logging)")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbPath     = flag.String("db", "lens_runs.db", "Path to the run database")
	configPath = flag.String("config", "", "Path to a tuning config JSON file")
)

func main() {
	flag.Parse()
	monitoring.SetLogger(log.Printf)

	// Subcommands run and exit before the server starts.
	if flag.Arg(0) == "migrate" {
		db.RunMigrateCommand(*dbPath, flag.Args()[1:])
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	database, err := db.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUpEmbedded(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		apiMux := api.NewServer(database, cfg).ServeMux()
		mux.Handle("/api/", apiMux)
		mux.Handle("/healthz", apiMux)

		vizMux := webviz.NewServer(database).ServeMux()
		mux.Handle("/viz", vizMux)
		mux.Handle("/viz/", vizMux)

		var h http.Handler = mux
		if *devMode {
			h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				log.Printf("got request %q", r.URL.Path)
				mux.ServeHTTP(w, r)
			})
		}

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
