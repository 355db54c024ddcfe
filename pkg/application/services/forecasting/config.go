package forecasting

import (
	"fmt"
	"runtime"
)

// RandomForestConfig holds random forest hyperparameters
type RandomForestConfig struct {
	NEstimators     int   `yaml:"n_estimators" env-default:"100"`
	MaxDepth        int   `yaml:"max_depth" env-default:"0"` // 0 = unlimited
	MinSamplesSplit int   `yaml:"min_samples_split" env-default:"2"`
	MinSamplesLeaf  int   `yaml:"min_samples_leaf" env-default:"1"`
	RandomState     int64 `yaml:"random_state" env-default:"42"`
}

// GradientBoostingConfig holds gradient boosting hyperparameters
type GradientBoostingConfig struct {
	NEstimators     int     `yaml:"n_estimators" env-default:"100"`
	LearningRate    float64 `yaml:"learning_rate" env-default:"0.1"`
	MaxDepth        int     `yaml:"max_depth" env-default:"3"`
	MinSamplesSplit int     `yaml:"min_samples_split" env-default:"2"`
	Subsample       float64 `yaml:"subsample" env-default:"1.0"`
	RandomState     int64   `yaml:"random_state" env-default:"42"`
}

// ExponentialSmoothingConfig holds Holt-Winters settings. Zero smoothing
// parameters are fitted from the data.
type ExponentialSmoothingConfig struct {
	Trend             string  `yaml:"trend" env-default:"add"`
	Seasonal          string  `yaml:"seasonal" env-default:"add"`
	SeasonalPeriods   int     `yaml:"seasonal_periods" env-default:"4"`
	DampedTrend       bool    `yaml:"damped_trend" env-default:"false"`
	SmoothingLevel    float64 `yaml:"smoothing_level" env-default:"0"`
	SmoothingTrend    float64 `yaml:"smoothing_trend" env-default:"0"`
	SmoothingSeasonal float64 `yaml:"smoothing_seasonal" env-default:"0"`
	DampingTrend      float64 `yaml:"damping_trend" env-default:"0.98"`
}

// LSTMConfig is passed through to a recurrent backend
type LSTMConfig struct {
	Units        int     `yaml:"units" env-default:"64"`
	UnitsSecond  int     `yaml:"units_second" env-default:"32"`
	Epochs       int     `yaml:"epochs" env-default:"50"`
	BatchSize    int     `yaml:"batch_size" env-default:"32"`
	Dropout      float64 `yaml:"dropout" env-default:"0.2"`
	Lookback     int     `yaml:"lookback" env-default:"8"`
	LearningRate float64 `yaml:"learning_rate" env-default:"0.001"`
}

// Config is the hyperparameter bundle of the forecaster
type Config struct {
	RandomForest          RandomForestConfig         `yaml:"random_forest"`
	GradientBoosting      GradientBoostingConfig     `yaml:"gradient_boosting"`
	ExponentialSmoothing  ExponentialSmoothingConfig `yaml:"exponential_smoothing"`
	LSTM                  LSTMConfig                 `yaml:"lstm"`
	WeeksAhead            int                        `yaml:"weeks_ahead" env-default:"4"`
	EnableCrossValidation bool                       `yaml:"enable_cross_validation" env-default:"false"`
	CrossValidationFolds  int                        `yaml:"cross_validation_folds" env-default:"5"`
	Workers               int                        `yaml:"workers" env:"FORECAST_WORKERS" env-default:"0"` // 0 = GOMAXPROCS
}

// DefaultConfig returns the stock hyperparameters
func DefaultConfig() Config {
	return Config{
		RandomForest: RandomForestConfig{
			NEstimators:     100,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			RandomState:     42,
		},
		GradientBoosting: GradientBoostingConfig{
			NEstimators:     100,
			LearningRate:    0.1,
			MaxDepth:        3,
			MinSamplesSplit: 2,
			Subsample:       1.0,
			RandomState:     42,
		},
		ExponentialSmoothing: ExponentialSmoothingConfig{
			Trend:           "add",
			Seasonal:        "add",
			SeasonalPeriods: 4,
			DampingTrend:    0.98,
		},
		LSTM: LSTMConfig{
			Units:        64,
			UnitsSecond:  32,
			Epochs:       50,
			BatchSize:    32,
			Dropout:      0.2,
			Lookback:     8,
			LearningRate: 0.001,
		},
		WeeksAhead:           4,
		CrossValidationFolds: 5,
	}
}

// Validate checks the bundle for values the models cannot work with
func (c Config) Validate() error {
	if c.RandomForest.NEstimators <= 0 {
		return fmt.Errorf("random_forest.n_estimators must be positive, got %d", c.RandomForest.NEstimators)
	}
	if c.RandomForest.MinSamplesSplit < 2 {
		return fmt.Errorf("random_forest.min_samples_split must be at least 2, got %d", c.RandomForest.MinSamplesSplit)
	}
	if c.RandomForest.MinSamplesLeaf < 1 {
		return fmt.Errorf("random_forest.min_samples_leaf must be at least 1, got %d", c.RandomForest.MinSamplesLeaf)
	}
	if c.GradientBoosting.NEstimators <= 0 {
		return fmt.Errorf("gradient_boosting.n_estimators must be positive, got %d", c.GradientBoosting.NEstimators)
	}
	if c.GradientBoosting.LearningRate <= 0 {
		return fmt.Errorf("gradient_boosting.learning_rate must be positive, got %g", c.GradientBoosting.LearningRate)
	}
	if c.GradientBoosting.Subsample <= 0 || c.GradientBoosting.Subsample > 1 {
		return fmt.Errorf("gradient_boosting.subsample must be in (0, 1], got %g", c.GradientBoosting.Subsample)
	}
	es := c.ExponentialSmoothing
	if es.Trend != "add" && es.Trend != "none" && es.Trend != "" {
		return fmt.Errorf("exponential_smoothing.trend must be add or none, got %q", es.Trend)
	}
	if es.Seasonal != "add" && es.Seasonal != "none" && es.Seasonal != "" {
		return fmt.Errorf("exponential_smoothing.seasonal must be add or none, got %q", es.Seasonal)
	}
	if es.Seasonal == "add" && es.SeasonalPeriods < 2 {
		return fmt.Errorf("exponential_smoothing.seasonal_periods must be at least 2, got %d", es.SeasonalPeriods)
	}
	for name, v := range map[string]float64{
		"smoothing_level":    es.SmoothingLevel,
		"smoothing_trend":    es.SmoothingTrend,
		"smoothing_seasonal": es.SmoothingSeasonal,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("exponential_smoothing.%s must be in [0, 1], got %g", name, v)
		}
	}
	if c.LSTM.Lookback < 1 {
		return fmt.Errorf("lstm.lookback must be positive, got %d", c.LSTM.Lookback)
	}
	if c.CrossValidationFolds < 1 {
		return fmt.Errorf("cross_validation_folds must be positive, got %d", c.CrossValidationFolds)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
