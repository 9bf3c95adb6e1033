package usecase

import (
	"context"
	"log/slog"

	"github.com/aasan/postgang/internal/domain"
)

// DateSource delivery-date provider port (Bring API or local file)
type DateSource interface {
	DeliveryDates(ctx context.Context, code domain.PostalCode) (domain.DeliveryDateSet, error)
}

// Renderer calendar document port
type Renderer interface {
	Render(code domain.PostalCode, dates domain.DeliveryDateSet) string
}

// GenerateCalendarUseCase fetches delivery dates once and renders them
type GenerateCalendarUseCase struct {
	source   DateSource
	renderer Renderer
	logger   *slog.Logger
}

// NewGenerateCalendarUseCase creates the use case
func NewGenerateCalendarUseCase(source DateSource, renderer Renderer, logger *slog.Logger) *GenerateCalendarUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateCalendarUseCase{
		source:   source,
		renderer: renderer,
		logger:   logger,
	}
}

// Execute returns the calendar document for code. Source errors are returned as is and
// logged by the caller.
func (uc *GenerateCalendarUseCase) Execute(ctx context.Context, code domain.PostalCode) (string, error) {
	dates, err := uc.source.DeliveryDates(ctx, code)
	if err != nil {
		uc.logger.Debug("failed to get delivery dates", "code", code, "kind", domain.KindOf(err).String(), "error", err)
		return "", err
	}

	uc.logger.Debug("got delivery dates", "code", code, "count", dates.Len())
	return uc.renderer.Render(code, dates), nil
}
