package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aasan/postgang/internal/calendar"
	"github.com/aasan/postgang/internal/config"
	"github.com/aasan/postgang/internal/domain"
	"github.com/aasan/postgang/internal/gateway"
	"github.com/aasan/postgang/internal/logging"
	"github.com/aasan/postgang/internal/usecase"
)

// generator produces a calendar document for a postal code
type generator interface {
	Execute(ctx context.Context, code domain.PostalCode) (string, error)
}

// feedHandler serves one calendar per Function URL invocation
type feedHandler struct {
	loadConfig   func(ctx context.Context) (*config.Config, error)
	newGenerator func(cfg *config.Config) generator
}

func newFeedHandler() *feedHandler {
	return &feedHandler{
		loadConfig: config.Load,
		newGenerator: func(cfg *config.Config) generator {
			client := gateway.NewBringClient(cfg.Credentials())
			return usecase.NewGenerateCalendarUseCase(client, calendar.NewBuilder(), slog.Default())
		},
	}
}

// handle answers ?code=NNNN, falling back to POSTGANG_CODE
func (h *feedHandler) handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	cfg, err := h.loadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return textResponse(http.StatusInternalServerError, "configuration error"), nil
	}

	raw := req.QueryStringParameters["code"]
	if raw == "" {
		raw = cfg.PostalCode
	}
	code, err := domain.ParsePostalCode(raw)
	if err != nil {
		return textResponse(http.StatusBadRequest, "invalid postal code"), nil
	}

	if err := cfg.Credentials().Validate(); err != nil {
		slog.Error("credentials not configured", "error", err)
		return textResponse(http.StatusInternalServerError, "configuration error"), nil
	}

	doc, err := h.newGenerator(cfg).Execute(ctx, code)
	if err != nil {
		slog.Error("failed to generate calendar", "code", code, "kind", domain.KindOf(err).String(), "error", err)
		msg := "could not fetch delivery dates"
		if domain.IsKind(err, domain.KindAuth) {
			msg = "Bring API rejected the credentials"
		}
		return textResponse(http.StatusBadGateway, msg), nil
	}

	return events.LambdaFunctionURLResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        "text/calendar; charset=utf-8",
			"Content-Disposition": `inline; filename="postgang-` + code.String() + `.ics"`,
		},
		Body: doc,
	}, nil
}

func textResponse(status int, msg string) events.LambdaFunctionURLResponse {
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       msg,
	}
}

func main() {
	logging.Setup(os.Stderr, os.Getenv(config.EnvLogLevel))
	lambda.Start(newFeedHandler().handle)
}
