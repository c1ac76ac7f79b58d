package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jw6ventures/dyncal/internal/availability"
	"github.com/jw6ventures/dyncal/internal/config"
	"github.com/jw6ventures/dyncal/internal/http"
	"github.com/jw6ventures/dyncal/internal/store"
)

func main() {
	log.Println("Starting dyncal server...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sources availability.Chain

	if cfg.AvailabilityFile != "" {
		file, err := availability.LoadFile(cfg.AvailabilityFile)
		if err != nil {
			log.Fatalf("failed to load availability file: %v", err)
		}
		log.Printf("[INFO] loaded availability sets %v from %s", file.Names(), cfg.AvailabilityFile)
		sources = append(sources, file)
	}

	var stor *store.Store
	if cfg.DB.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("failed to create db pool: %v", err)
		}
		defer pool.Close()

		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = store.ApplyMigrations(migrateCtx, pool)
		cancel()
		if err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}

		stor = store.New(pool)
		sources = append(sources, availability.StoreSource{Repo: stor.Availability})
	} else {
		log.Println("[INFO] no database configured; only inline and file availability sets are served")
	}

	var src availability.Source
	if len(sources) > 0 {
		src = sources
	}

	r := httpserver.NewRouter(ctx, cfg, stor, src)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
