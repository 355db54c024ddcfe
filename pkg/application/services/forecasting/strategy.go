package forecasting

import (
	"fmt"
	"math"
	"time"
)

// ProductHistory is the weekly series of a single product, oldest first
type ProductHistory struct {
	Dates  []time.Time
	Values []float64
}

func (h ProductHistory) Len() int {
	return len(h.Values)
}

func (h ProductHistory) LastDate() time.Time {
	return h.Dates[len(h.Dates)-1]
}

// Strategy fits a model to one product's history and returns weeksAhead raw
// predictions. Products shorter than MinHistory are skipped by the forecaster.
type Strategy interface {
	MinHistory() int
	FitAndForecast(h ProductHistory, weeksAhead int) ([]float64, error)
}

// baselineStrategy repeats the mean of the last four weeks
type baselineStrategy struct{}

func (baselineStrategy) MinHistory() int { return 4 }

func (baselineStrategy) FitAndForecast(h ProductHistory, weeksAhead int) ([]float64, error) {
	last := h.Values[len(h.Values)-4:]
	var sum float64
	for _, v := range last {
		sum += v
	}
	avg := sum / 4

	out := make([]float64, weeksAhead)
	for i := range out {
		out[i] = avg
	}
	return out, nil
}

// treeStrategy trains a tree ensemble on calendar and lag features and
// forecasts recursively, feeding each prediction back into the lag buffer
type treeStrategy struct {
	fit      func(X [][]float64, y []float64) regressor
	holidays HolidayCalendar
}

func (treeStrategy) MinHistory() int { return 8 }

func (s treeStrategy) FitAndForecast(h ProductHistory, weeksAhead int) ([]float64, error) {
	X, y := trainingSet(h, s.holidays)
	if len(y) == 0 {
		return nil, fmt.Errorf("no training rows after lag features")
	}

	model := s.fit(X, y)

	lags := newLagBuffer(h.Values)
	out := make([]float64, weeksAhead)
	for step := 1; step <= weeksAhead; step++ {
		date := h.LastDate().AddDate(0, 0, 7*step)
		pred := model.predict(featureRow(date, lags, s.holidays))
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			return nil, fmt.Errorf("non-finite prediction at step %d", step)
		}
		out[step-1] = pred
		lags = lags.push(pred)
	}
	return out, nil
}

func randomForestStrategy(cfg RandomForestConfig, cal HolidayCalendar) treeStrategy {
	return treeStrategy{
		fit: func(X [][]float64, y []float64) regressor {
			return fitRandomForest(X, y, cfg)
		},
		holidays: cal,
	}
}

func gradientBoostingStrategy(cfg GradientBoostingConfig, cal HolidayCalendar) treeStrategy {
	return treeStrategy{
		fit: func(X [][]float64, y []float64) regressor {
			return fitGradientBoosting(X, y, cfg)
		},
		holidays: cal,
	}
}
