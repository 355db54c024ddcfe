package forecasting

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/supplyadvisor/pkg/application/services/preprocessing"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// Forecaster produces per-product weekly demand forecasts
type Forecaster struct {
	config     Config
	log        *slog.Logger
	holidays   HolidayCalendar
	recurrent  RecurrentBackend
	workers    int
	strategies map[entities.ModelType]Strategy
}

// Option customizes a Forecaster
type Option func(*Forecaster)

// WithHolidayCalendar replaces the default Polish public holiday calendar
func WithHolidayCalendar(cal HolidayCalendar) Option {
	return func(f *Forecaster) { f.holidays = cal }
}

// WithRecurrentBackend plugs in a sequence-model runtime for the lstm model
func WithRecurrentBackend(b RecurrentBackend) Option {
	return func(f *Forecaster) { f.recurrent = b }
}

// WithWorkers bounds the number of products forecast concurrently
func WithWorkers(n int) Option {
	return func(f *Forecaster) { f.workers = n }
}

// New creates a forecaster. The strategy table is fixed at construction.
func New(logger *slog.Logger, cfg Config, opts ...Option) *Forecaster {
	f := &Forecaster{
		config:    cfg,
		log:       logger.With(slog.String("component", "forecaster")),
		holidays:  NewPolishHolidays(),
		recurrent: UnavailableBackend{},
		workers:   cfg.workers(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.workers < 1 {
		f.workers = 1
	}

	f.strategies = map[entities.ModelType]Strategy{
		entities.ModelBaseline:             baselineStrategy{},
		entities.ModelRandomForest:         randomForestStrategy(cfg.RandomForest, f.holidays),
		entities.ModelGradientBoosting:     gradientBoostingStrategy(cfg.GradientBoosting, f.holidays),
		entities.ModelExponentialSmoothing: smoothingStrategy{cfg: cfg.ExponentialSmoothing},
		entities.ModelLSTM:                 recurrentStrategy{backend: f.recurrent, cfg: cfg.LSTM},
	}
	return f
}

// Config returns the hyperparameters the forecaster was built with
func (f *Forecaster) Config() Config {
	return f.config
}

// IsAvailable reports whether a model type can be used
func (f *Forecaster) IsAvailable(model entities.ModelType) bool {
	if _, ok := f.strategies[model]; !ok {
		return false
	}
	if model == entities.ModelLSTM {
		return f.recurrent != nil && f.recurrent.IsAvailable()
	}
	return true
}

// AvailableModels lists the model types usable with the current backends
func (f *Forecaster) AvailableModels() []entities.ModelType {
	var models []entities.ModelType
	for _, m := range entities.ModelTypes {
		if f.IsAvailable(m) {
			models = append(models, m)
		}
	}
	return models
}

// FeatureNames returns the feature columns used by the tree models
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

// PredictBaseline forecasts every product with at least four points as the
// mean of its last four observations
func (f *Forecaster) PredictBaseline(series []entities.TimeSeriesPoint, weeksAhead int) []entities.ForecastPoint {
	points, _ := f.TrainPredict(series, weeksAhead, entities.ModelBaseline)
	return points
}

// TrainPredict fits the selected model per product and forecasts weeksAhead
// weeks past each product's last date. Products with too little history or a
// failing fit are left out. Output is ordered by product, then date.
func (f *Forecaster) TrainPredict(series []entities.TimeSeriesPoint, weeksAhead int, model entities.ModelType) ([]entities.ForecastPoint, error) {
	strategy, ok := f.strategies[model]
	if !ok {
		return nil, apperrors.ErrUnsupportedModelType(string(model), "unknown model")
	}
	if model == entities.ModelLSTM && !f.IsAvailable(model) {
		return nil, apperrors.ErrUnsupportedModelType(string(model), "model unavailable")
	}
	if weeksAhead <= 0 || len(series) == 0 {
		return []entities.ForecastPoint{}, nil
	}

	start := time.Now()
	products, groups := preprocessing.GroupByProduct(series)
	results := make([][]entities.ForecastPoint, len(products))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, product := range products {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					fitErr := apperrors.ErrModelFittingFailed(int64(product), fmt.Errorf("panic: %v", r))
					f.log.Warn("skipping product after model failure",
						slog.String("model", string(model)),
						slog.String("error", fitErr.Error()),
					)
					results[i] = nil
				}
			}()
			results[i] = f.forecastProduct(product, groups[product], weeksAhead, model, strategy)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]entities.ForecastPoint, 0, len(products)*weeksAhead)
	forecasted := 0
	for _, r := range results {
		if len(r) > 0 {
			forecasted++
		}
		out = append(out, r...)
	}

	f.log.Info("forecast completed",
		slog.String("model", string(model)),
		slog.Int("products", len(products)),
		slog.Int("forecasted", forecasted),
		slog.Int("weeks_ahead", weeksAhead),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (f *Forecaster) forecastProduct(
	product entities.ProductID,
	points []entities.TimeSeriesPoint,
	weeksAhead int,
	model entities.ModelType,
	strategy Strategy,
) []entities.ForecastPoint {
	history := ProductHistory{
		Dates:  make([]time.Time, len(points)),
		Values: make([]float64, len(points)),
	}
	for i, p := range points {
		history.Dates[i] = p.Date
		history.Values[i] = p.Quantity
	}

	if history.Len() < strategy.MinHistory() {
		f.log.Debug("skipping product with insufficient history",
			slog.Int64("product_id", int64(product)),
			slog.Int("points", history.Len()),
			slog.Int("required", strategy.MinHistory()),
		)
		return nil
	}

	values, err := strategy.FitAndForecast(history, weeksAhead)
	if err != nil {
		fitErr := apperrors.ErrModelFittingFailed(int64(product), err)
		f.log.Warn("skipping product after model failure",
			slog.String("model", string(model)),
			slog.String("error", fitErr.Error()),
		)
		return nil
	}

	label := model.Label()
	last := history.LastDate()
	out := make([]entities.ForecastPoint, 0, len(values))
	for step, v := range values {
		out = append(out, entities.ForecastPoint{
			ProductID:         product,
			Date:              last.AddDate(0, 0, 7*(step+1)),
			PredictedQuantity: math.Max(0, v),
			Model:             label,
		})
	}
	return out
}
