package events

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

const (
	SimulationCompletedEvent = "simulation.completed"
	ShortageIdentifiedEvent  = "shortage.identified"
	ForecastCompletedEvent   = "forecast.completed"
	AdviceGeneratedEvent     = "advice.generated"
)

type SimulationCompleted struct {
	ProductID      entities.ProductID `json:"product_id"`
	Quantity       decimal.Decimal    `json:"quantity"`
	CanProduce     bool               `json:"can_produce"`
	MaxProducible  decimal.Decimal    `json:"max_producible"`
	Shortages      int                `json:"shortages"`
	LimitingFactor string             `json:"limiting_factor,omitempty"`
	DeliveryAware  bool               `json:"delivery_aware"`
	ErrorCode      string             `json:"error_code,omitempty"`
}

type ShortageIdentified struct {
	ProductID      entities.ProductID      `json:"product_id"`
	IngredientCode string                  `json:"ingredient_code"`
	Missing        decimal.Decimal         `json:"missing"`
	Status         entities.ShortageStatus `json:"status"`
}

type ForecastCompleted struct {
	Model    entities.ModelType `json:"model"`
	Products int                `json:"products"`
	Points   int                `json:"points"`
	Duration time.Duration      `json:"duration"`
}

type AdviceGenerated struct {
	ProductID    entities.ProductID `json:"product_id"`
	LLMAvailable bool               `json:"llm_available"`
}

func NewSimulationCompletedEvent(streamID string, result entities.SimulationResult, deliveryAware bool) Event {
	data := SimulationCompleted{
		ProductID:     result.ProductID,
		Quantity:      result.TargetQuantity,
		CanProduce:    result.CanProduce,
		MaxProducible: result.MaxProducible,
		Shortages:     len(result.Shortages),
		DeliveryAware: deliveryAware,
		ErrorCode:     result.ErrorCode,
	}
	if result.LimitingFactor != nil {
		data.LimitingFactor = result.LimitingFactor.IngredientCode
	}
	return NewEvent(SimulationCompletedEvent, streamID, data)
}

func NewShortageIdentifiedEvent(streamID string, productID entities.ProductID, line entities.ShortageLine) Event {
	return NewEvent(ShortageIdentifiedEvent, streamID, ShortageIdentified{
		ProductID:      productID,
		IngredientCode: line.IngredientCode,
		Missing:        line.ToOrder(),
		Status:         line.Status,
	})
}

func NewForecastCompletedEvent(streamID string, model entities.ModelType, products, points int, duration time.Duration) Event {
	return NewEvent(ForecastCompletedEvent, streamID, ForecastCompleted{
		Model:    model,
		Products: products,
		Points:   points,
		Duration: duration,
	})
}

func NewAdviceGeneratedEvent(streamID string, productID entities.ProductID, llmAvailable bool) Event {
	return NewEvent(AdviceGeneratedEvent, streamID, AdviceGenerated{
		ProductID:    productID,
		LLMAvailable: llmAvailable,
	})
}

// ShortageLogger logs every identified shortage and completed simulation
type ShortageLogger struct {
	log *slog.Logger
}

func NewShortageLogger(logger *slog.Logger) *ShortageLogger {
	return &ShortageLogger{log: logger.With(slog.String("component", "shortage_logger"))}
}

// EventTypes lists the events the logger subscribes to
func (l *ShortageLogger) EventTypes() []string {
	return []string{ShortageIdentifiedEvent, SimulationCompletedEvent}
}

func (l *ShortageLogger) CanHandle(eventType string) bool {
	return eventType == ShortageIdentifiedEvent || eventType == SimulationCompletedEvent
}

func (l *ShortageLogger) Handle(event Event) error {
	switch data := event.Data().(type) {
	case ShortageIdentified:
		l.log.Info("shortage identified",
			slog.String("run_id", event.StreamID()),
			slog.Int64("product_id", int64(data.ProductID)),
			slog.String("ingredient_code", data.IngredientCode),
			slog.String("missing", data.Missing.String()),
			slog.String("status", string(data.Status)),
		)
	case SimulationCompleted:
		l.log.Debug("simulation completed",
			slog.String("run_id", event.StreamID()),
			slog.Int64("product_id", int64(data.ProductID)),
			slog.Bool("can_produce", data.CanProduce),
			slog.Int("shortages", data.Shortages),
		)
	default:
		return fmt.Errorf("unexpected payload %T for %s", event.Data(), event.Type())
	}
	return nil
}
