package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/xiaot623/gogo/callbot/internal/app"
	"github.com/xiaot623/gogo/callbot/internal/config"
	handler "github.com/xiaot623/gogo/callbot/internal/transport/http"
	"github.com/xiaot623/gogo/callbot/internal/transport/rpc"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	app.SetupLogging(cfg)

	slog.Info("starting callbot",
		"http_port", cfg.HTTPPort,
		"rpc_port", cfg.RPCPort,
		"llm_base_url", cfg.LLMBaseURL,
	)

	// Initialize service
	ctx := context.Background()
	svc, db, err := app.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// HTTP: Lex code hook, read API and chat socket
	httpServer := handler.NewServer(svc)

	// JSON-RPC for call-flow engines
	rpcServer, err := rpc.NewServer(svc)
	if err != nil {
		slog.Error("failed to initialize rpc server", "error", err)
		os.Exit(1)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	if cfg.RPCPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.RPCPort)
			if err := rpcServer.Start(addr); err != nil {
				slog.Error("rpc server failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	slog.Info("callbot started", "http_port", cfg.HTTPPort, "rpc_port", cfg.RPCPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down callbot")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("failed to shutdown http server gracefully", "error", err)
	}
	if err := rpcServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("failed to shutdown rpc server gracefully", "error", err)
	}

	slog.Info("callbot stopped")
}
