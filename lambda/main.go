// Command lambda serves the Lex V2 fulfilment code hook as an AWS Lambda function.
package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/xiaot623/gogo/callbot/internal/app"
	"github.com/xiaot623/gogo/callbot/internal/config"
	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/lex"
	"github.com/xiaot623/gogo/callbot/internal/service"
)

type fulfillment struct {
	processor lex.TurnProcessor
}

// handle never fails the invocation: Lex would read the caller a generic
// error, so failures become the apology reply instead.
func (f *fulfillment) handle(ctx context.Context, event lex.Event) (*lex.Response, error) {
	resp, err := lex.Handle(ctx, f.processor, &event)
	if err != nil {
		slog.Error("lex fulfilment failed", "session_id", event.SessionID, "error", err)
		attrs := domain.Attributes(event.SessionState.SessionAttributes).Clone()
		return lex.Build(&event, domain.Continue(service.UnhandledReply, attrs)), nil
	}
	return resp, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	app.SetupLogging(cfg)

	svc, db, err := app.Build(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	f := &fulfillment{processor: svc}
	lambda.Start(f.handle)
}
