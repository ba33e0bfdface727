// Package fixtures builds a fully wired dialog service for transport tests.
package fixtures

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/xiaot623/gogo/callbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/callbot/internal/config"
	"github.com/xiaot623/gogo/callbot/internal/repository"
	"github.com/xiaot623/gogo/callbot/internal/service"
	"github.com/xiaot623/gogo/callbot/internal/tools"
	"github.com/xiaot623/gogo/callbot/policy"
	"github.com/xiaot623/gogo/callbot/tests/helpers"
)

// Now is the fixed clock used by fixture services: 2024-01-01 10:00 in Chicago.
var Now = time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)

// Service bundles a service with its scripted model and store.
type Service struct {
	*service.Service
	LLM   *llm.MockClient
	Store *store.SQLiteStore
}

// NewService wires the built-in tools, the default policy, an in-memory store
// and a scripted model.
func NewService(t *testing.T) *Service {
	t.Helper()

	cfg := &config.Config{
		TimeZone:          "America/Chicago",
		LLMModel:          "gpt-test",
		LLMTimeout:        time.Second,
		LLMTemperature:    0.2,
		LLMMaxTokens:      500,
		MaxToolIterations: 10,
		BlankInputLimit:   2,
		SystemPrompt:      config.DefaultSystemPrompt,
		DirectionsURL:     "https://maps.example/store",
		StoreHours:        "mon-sat=10:00-17:00",
	}

	hours, err := tools.ParseSchedule(cfg.StoreHours)
	if err != nil {
		t.Fatalf("ParseSchedule failed: %v", err)
	}
	reg := tools.NewRegistry()
	if err := tools.RegisterBuiltins(reg, tools.Deps{
		DirectionsURL: cfg.DirectionsURL,
		Hours:         hours,
		Location:      cfg.Location(),
		Now:           func() time.Time { return Now },
	}); err != nil {
		t.Fatalf("RegisterBuiltins failed: %v", err)
	}

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy, policy.Settings{})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	db := helpers.NewTestSQLiteStore(t)
	mock := llm.NewMockClient()
	svc := service.New(db, mock, reg, policyEngine, cfg)
	svc.SetClock(func() time.Time { return Now })

	return &Service{Service: svc, LLM: mock, Store: db}
}
