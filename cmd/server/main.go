package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Simplici0/printledger/internal/auth"
	"github.com/Simplici0/printledger/internal/config"
	"github.com/Simplici0/printledger/internal/engine"
	"github.com/Simplici0/printledger/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings() {
		logger.Warn("warning: " + w)
	}

	eng, err := engine.Open(context.Background(), cfg.DBPath, engine.Options{
		Logger: logger,
		Seed: seed.Config{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		},
	})
	if err != nil {
		logger.Error("failed to open engine", "db_path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	srv := &server{engine: eng, logger: logger}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		srv.auth = auth.NewService(eng.DB(), cfg.SessionSecret)
		if srv.auth.EphemeralSecret() {
			logger.Warn("SESSION_SECRET not set; signing sessions with a random key, sessions will not survive a restart")
		}
	} else {
		logger.Warn("operator login disabled; API is unauthenticated")
	}

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, newRouter(srv)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
