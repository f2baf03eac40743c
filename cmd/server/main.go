package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"concept-booster/internal/api"
	"concept-booster/internal/config"
	"concept-booster/internal/db"
	"concept-booster/internal/kv"
	"concept-booster/internal/logger"
	"concept-booster/internal/services"
)

const (
	sessionTTL        = 2 * time.Hour
	sessionSweepEvery = 10 * time.Minute
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal("open database", "path", cfg.Database, "error", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, conn, log)
	defer closeStore()

	if cfg.GatewayKey == "" {
		log.Warn("AI_GATEWAY_API_KEY is not set; tutoring routes will answer 500")
	}
	gateway := services.NewAIService(cfg.GatewayKey, cfg.GatewayModel, cfg.GatewayEndpoint, cfg.GatewayTimeout, log.With("component", "gateway"))
	vision := services.NewVisionService(cfg.VisionKey, cfg.VisionBaseURL, cfg.VisionModel, log.With("component", "vision"))
	tutor := services.NewTutorService(gateway, log.With("component", "tutor"))
	progress := services.NewProgressService(store)
	reviews := services.NewReviewService(conn)

	server := api.NewServer(tutor, vision, progress, reviews, log.With("component", "http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: api.DescribeTimeout + cfg.GatewayTimeout + 15*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", srv.Addr, "model", cfg.GatewayModel, "vision", vision.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := server.Sessions().Prune(sessionTTL); n > 0 {
					log.Debug("pruned quiz sessions", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		return
	}
	log.Info("server stopped")
}

// openStore picks Redis when REDIS_URL is set and falls back to the SQLite kv table.
func openStore(ctx context.Context, cfg config.Config, conn *sql.DB, log *logger.Logger) (kv.Store, func()) {
	if cfg.RedisURL == "" {
		log.Info("progress store", "backend", "sqlite")
		return kv.NewSQLiteStore(conn), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := kv.NewRedisStore(pingCtx, cfg.RedisURL, "booster")
	if err != nil {
		log.Warn("redis unavailable, using sqlite for progress", "error", err)
		return kv.NewSQLiteStore(conn), func() {}
	}
	log.Info("progress store", "backend", "redis")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("close redis", "error", err)
		}
	}
}
