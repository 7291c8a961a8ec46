package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if !strings.Contains(cfg.Server.GRPCAddr, ":") {
		cfg.Server.GRPCAddr = ":" + cfg.Server.GRPCAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.ServeGRPC(ctx, cfg.Server.GRPCAddr); err != nil {
		logger.Error("gRPC serve error", "error", err)
		a.Close()
		os.Exit(1)
	}
}
