package entities

import (
	"fmt"
	"strings"
	"time"
)

// ModelType selects a forecasting method
type ModelType string

const (
	ModelBaseline             ModelType = "baseline"
	ModelRandomForest         ModelType = "rf"
	ModelGradientBoosting     ModelType = "gb"
	ModelExponentialSmoothing ModelType = "es"
	ModelLSTM                 ModelType = "lstm"
)

// ModelTypes lists every model the forecaster knows about
var ModelTypes = []ModelType{
	ModelBaseline,
	ModelRandomForest,
	ModelGradientBoosting,
	ModelExponentialSmoothing,
	ModelLSTM,
}

// ParseModelType accepts the short model codes, case-insensitively
func ParseModelType(s string) (ModelType, error) {
	mt := ModelType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ModelTypes {
		if mt == known {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown model type %q", s)
}

// Label is the human-readable model name written into forecast output
func (m ModelType) Label() string {
	switch m {
	case ModelBaseline:
		return "Baseline (SMA-4)"
	case ModelRandomForest:
		return "Random Forest"
	case ModelGradientBoosting:
		return "Gradient Boosting"
	case ModelExponentialSmoothing:
		return "Exponential Smoothing"
	case ModelLSTM:
		return "LSTM (Deep Learning)"
	default:
		return string(m)
	}
}

// ForecastPoint is one predicted week for one product
type ForecastPoint struct {
	ProductID         ProductID `json:"TowarId"`
	Date              time.Time `json:"Date"`
	PredictedQuantity float64   `json:"Predicted_Qty"`
	Model             string    `json:"Model"`
}

// ForecastMetrics holds accuracy measures of a forecast against actuals
type ForecastMetrics struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// CrossValidationResult aggregates metrics over time-series folds
type CrossValidationResult struct {
	ProductID ProductID         `json:"product_id"`
	Model     ModelType         `json:"model"`
	Folds     []ForecastMetrics `json:"folds"`
	Mean      ForecastMetrics   `json:"mean"`
	StdDev    ForecastMetrics   `json:"std"`
}
