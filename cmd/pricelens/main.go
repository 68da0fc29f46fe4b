package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/database"
	"pricelens/internal/engine"
	"pricelens/internal/feed"
	"pricelens/internal/model"
	"pricelens/internal/server"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, &cfg); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	loaded, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	for _, skipped := range loaded.Skipped {
		logger.Warn("record excluded from analytics", "reason", skipped.Reason)
	}
	logger.Info("catalog loaded",
		"records", len(loaded.Records),
		"skipped", len(loaded.Skipped),
	)

	repo, err := database.NewPostgresRepository(ctx, cfg.Database.ConnString())
	if err != nil {
		return err
	}
	defer repo.Pool.Close()
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	eng := engine.NewEngine(logger, repo, cfg, loaded.Records)
	for _, w := range eng.Warnings() {
		logger.Warn("data quality", "warning", w)
	}

	quoteChan := make(chan model.CompetitorQuote, 64)
	for name, feedCfg := range cfg.Feeds {
		if !feedCfg.Enabled {
			continue
		}
		client, err := feed.NewClient(name, logger, feedCfg)
		if err != nil {
			return err
		}
		go func() {
			if err := client.StartStream(ctx, quoteChan); err != nil {
				logger.Error("feed stream stopped", "feed", client.GetName(), "error", err)
			}
		}()
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case quote := <-quoteChan:
				eng.ProcessQuote(ctx, quote)
			}
		}
	}()

	srv := server.New(logger, cfg, eng, loaded.Skipped)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
