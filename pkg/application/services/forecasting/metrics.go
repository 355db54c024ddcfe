package forecasting

import (
	"fmt"
	"math"

	"github.com/vsinha/supplyadvisor/pkg/application/services/preprocessing"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// EvaluateModel compares predictions with actuals. MAPE ignores weeks with
// zero actual usage and R2 is zero for fewer than two points.
func EvaluateModel(actual, predicted []float64) (entities.ForecastMetrics, error) {
	if len(actual) != len(predicted) {
		return entities.ForecastMetrics{}, apperrors.ErrValidation(
			fmt.Sprintf("actual and predicted lengths differ: %d vs %d", len(actual), len(predicted)))
	}
	n := len(actual)
	if n == 0 {
		return entities.ForecastMetrics{}, apperrors.ErrInsufficientData("no points to evaluate")
	}

	var absSum, sqSum, apeSum, actualSum float64
	apeCount := 0
	for i := range actual {
		diff := actual[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		actualSum += actual[i]
		if actual[i] != 0 {
			apeSum += math.Abs(diff / actual[i])
			apeCount++
		}
	}

	m := entities.ForecastMetrics{
		MAE:  absSum / float64(n),
		RMSE: math.Sqrt(sqSum / float64(n)),
	}
	if apeCount > 0 {
		m.MAPE = apeSum / float64(apeCount) * 100
	}
	if n > 1 {
		mean := actualSum / float64(n)
		var ssTot float64
		for _, a := range actual {
			ssTot += (a - mean) * (a - mean)
		}
		switch {
		case ssTot > 0:
			m.R2 = 1 - sqSum/ssTot
		case sqSum == 0:
			m.R2 = 1
		}
	}
	return m, nil
}

// CrossValidate scores a model on one product with expanding-window folds,
// each fold testing the testSize weeks before the previous fold
func (f *Forecaster) CrossValidate(
	series []entities.TimeSeriesPoint,
	product entities.ProductID,
	model entities.ModelType,
	folds, testSize int,
) (entities.CrossValidationResult, error) {
	result := entities.CrossValidationResult{ProductID: product, Model: model}
	if folds <= 0 {
		folds = f.config.CrossValidationFolds
	}
	if testSize <= 0 {
		testSize = 4
	}

	_, groups := preprocessing.GroupByProduct(series)
	points := groups[product]
	strategy, ok := f.strategies[model]
	if !ok {
		return result, apperrors.ErrUnsupportedModelType(string(model), "unknown model")
	}
	minTrain := max(strategy.MinHistory(), 8)

	for i := 0; i < folds; i++ {
		testEnd := len(points) - i*testSize
		testStart := testEnd - testSize
		if testStart < minTrain {
			break
		}

		forecast, err := f.TrainPredict(points[:testStart], testSize, model)
		if err != nil {
			return result, err
		}
		if len(forecast) != testSize {
			continue
		}

		actual := preprocessing.Quantities(points[testStart:testEnd])
		predicted := make([]float64, len(forecast))
		for j, p := range forecast {
			predicted[j] = p.PredictedQuantity
		}
		metrics, err := EvaluateModel(actual, predicted)
		if err != nil {
			return result, err
		}
		result.Folds = append(result.Folds, metrics)
	}

	if len(result.Folds) == 0 {
		return result, apperrors.ErrInsufficientData(
			fmt.Sprintf("product %d has too little history for cross-validation", product))
	}

	result.Mean, result.StdDev = summarizeFolds(result.Folds)
	return result, nil
}

func summarizeFolds(folds []entities.ForecastMetrics) (entities.ForecastMetrics, entities.ForecastMetrics) {
	columns := func(get func(entities.ForecastMetrics) float64) (float64, float64) {
		values := make([]float64, len(folds))
		for i, m := range folds {
			values[i] = get(m)
		}
		mean := meanOf(values)
		var ss float64
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		return mean, math.Sqrt(ss / float64(len(values)))
	}

	var mean, std entities.ForecastMetrics
	mean.MAPE, std.MAPE = columns(func(m entities.ForecastMetrics) float64 { return m.MAPE })
	mean.RMSE, std.RMSE = columns(func(m entities.ForecastMetrics) float64 { return m.RMSE })
	mean.MAE, std.MAE = columns(func(m entities.ForecastMetrics) float64 { return m.MAE })
	mean.R2, std.R2 = columns(func(m entities.ForecastMetrics) float64 { return m.R2 })
	return mean, std
}
