package events

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func TestShortageLogger_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := NewShortageLogger(logger)

	line := entities.ShortageLine{
		BOMLine:          entities.BOMLine{IngredientCode: "SUGAR", CurrentStock: decimal.NewFromInt(45)},
		QuantityRequired: decimal.NewFromInt(50),
		Shortage:         decimal.NewFromInt(-5),
		Status:           entities.StatusShort,
	}
	if err := handler.Handle(NewShortageIdentifiedEvent("run-1", 100, line)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"shortage identified", "ingredient_code=SUGAR", "missing=5", "component=shortage_logger"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in log output %q", want, out)
		}
	}

	if !handler.CanHandle(SimulationCompletedEvent) || handler.CanHandle(ForecastCompletedEvent) {
		t.Error("Unexpected CanHandle result")
	}
	if err := handler.Handle(NewEvent(ShortageIdentifiedEvent, "run-1", "bogus")); err == nil {
		t.Error("Expected error for unexpected payload")
	}
}
