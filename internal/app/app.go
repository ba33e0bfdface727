// Package app wires the dialog service from configuration. It is shared by
// the long-running server and the Lambda entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xiaot623/gogo/callbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/callbot/internal/adapter/sms"
	"github.com/xiaot623/gogo/callbot/internal/config"
	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/repository"
	"github.com/xiaot623/gogo/callbot/internal/service"
	"github.com/xiaot623/gogo/callbot/internal/tools"
	"github.com/xiaot623/gogo/callbot/policy"
)

// SetupLogging installs a JSON slog handler at the configured level.
func SetupLogging(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
}

// OpenStore opens the configured session store.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.SessionStore {
	case config.StoreDynamoDB:
		return store.NewDynamoStore(ctx, cfg.SessionTableName, cfg.SessionTTL)
	case config.StorePostgres:
		return store.NewPostgresStore(cfg.PostgresDSN)
	default:
		return store.NewSQLiteStore(cfg.DatabaseURL)
	}
}

// NewRegistry builds the tool registry with the built-in tools. Text messages
// are sent through Twilio when credentials are configured.
func NewRegistry(cfg *config.Config) (*tools.Registry, error) {
	hours, err := tools.ParseSchedule(cfg.StoreHours)
	if err != nil {
		return nil, fmt.Errorf("failed to parse STORE_HOURS: %w", err)
	}

	deps := tools.Deps{
		DirectionsURL: cfg.DirectionsURL,
		Hours:         hours,
		Location:      cfg.Location(),
	}
	if cfg.TwilioEnabled() {
		sender, err := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize twilio: %w", err)
		}
		deps.SMS = sender
	} else {
		slog.Warn("twilio is not configured, voice callers cannot be sent directions")
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltins(registry, deps); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return registry, nil
}

// Build opens the store and wires the dialog service. The returned store must
// be closed by the caller.
func Build(ctx context.Context, cfg *config.Config) (*service.Service, store.Store, error) {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	registry, err := NewRegistry(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy, policy.Settings{
		TransferAllowlist: cfg.TransferAllowlist,
		BlockedTools:      cfg.BlockedTools,
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	llmClient := llm.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	slog.Info("dialog service ready",
		"session_store", cfg.SessionStore,
		"model", cfg.LLMModel,
		"time_zone", cfg.TimeZone,
		"tools", len(registry.Definitions(domain.InputModeVoice)),
	)
	return service.New(db, llmClient, registry, policyEngine, cfg), db, nil
}
