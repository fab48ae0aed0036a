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

	"github.com/joho/godotenv"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/db"
	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/export"
	"github.com/billforge/billforge/internal/raster"
	"github.com/billforge/billforge/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(cfg.DatabaseDSN); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	ras, err := newRasterizer(cfg)
	if err != nil {
		// The builder still works without a browser; only export is dead.
		log.Printf("warning: headless browser unavailable, PDF export disabled: %v", err)
		ras = unavailableRasterizer{err: err}
	} else if c, ok := ras.(*raster.Capturer); ok {
		defer c.Close()
	}

	manager := draft.NewManager(time.Now())
	exporter := export.New(ras)

	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)
	handler := server.New(server.Deps{DB: dbConn, Manager: manager, Exporter: exporter})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

func newRasterizer(cfg config.Config) (export.Rasterizer, error) {
	opts := []raster.Option{
		raster.WithTimeout(cfg.ExportTimeout),
		raster.WithSettleDelay(cfg.SettleDelay),
	}
	if cfg.ChromePath != "" {
		opts = append(opts, raster.WithChromePath(cfg.ChromePath))
	}
	if cfg.ChromeNoSandbox {
		opts = append(opts, raster.WithNoSandbox())
	}
	return raster.New(opts...)
}

// unavailableRasterizer stands in when no browser could be started; every
// export fails with the startup error instead of crashing the server.
type unavailableRasterizer struct{ err error }

func (u unavailableRasterizer) Capture(context.Context, string) (*raster.Image, error) {
	return nil, fmt.Errorf("rasterizer unavailable: %w", u.err)
}
