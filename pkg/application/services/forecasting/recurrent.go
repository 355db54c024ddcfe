package forecasting

import (
	"errors"
	"fmt"
	"math"
)

// SequenceModel predicts the next scaled value from a window of scaled values
type SequenceModel interface {
	PredictNext(window []float64) (float64, error)
}

// RecurrentBackend trains sequence models. Deep-learning runtimes live
// outside this module and plug in through this interface.
type RecurrentBackend interface {
	IsAvailable() bool
	Fit(windows [][]float64, targets []float64, cfg LSTMConfig) (SequenceModel, error)
}

// ErrBackendUnavailable is returned by the default backend
var ErrBackendUnavailable = errors.New("recurrent backend not installed")

// UnavailableBackend is the default backend; it reports itself unavailable
type UnavailableBackend struct{}

func (UnavailableBackend) IsAvailable() bool { return false }

func (UnavailableBackend) Fit([][]float64, []float64, LSTMConfig) (SequenceModel, error) {
	return nil, ErrBackendUnavailable
}

// recurrentStrategy scales the series to [0, 1], trains on lookback windows
// and runs the recursive forecast loop itself
type recurrentStrategy struct {
	backend RecurrentBackend
	cfg     LSTMConfig
}

func (s recurrentStrategy) MinHistory() int {
	return s.cfg.Lookback + 4
}

func (s recurrentStrategy) FitAndForecast(h ProductHistory, weeksAhead int) ([]float64, error) {
	lookback := s.cfg.Lookback
	scaler := fitMinMax(h.Values)
	scaled := scaler.transform(h.Values)

	windows := make([][]float64, 0, len(scaled)-lookback)
	targets := make([]float64, 0, len(scaled)-lookback)
	for i := lookback; i < len(scaled); i++ {
		windows = append(windows, append([]float64(nil), scaled[i-lookback:i]...))
		targets = append(targets, scaled[i])
	}

	model, err := s.backend.Fit(windows, targets, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("training sequence model: %w", err)
	}

	window := append([]float64(nil), scaled[len(scaled)-lookback:]...)
	out := make([]float64, weeksAhead)
	for step := 0; step < weeksAhead; step++ {
		next, err := model.PredictNext(window)
		if err != nil {
			return nil, fmt.Errorf("predicting step %d: %w", step+1, err)
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return nil, fmt.Errorf("non-finite prediction at step %d", step+1)
		}
		out[step] = scaler.inverse(next)
		window = append(window[1:], next)
	}
	return out, nil
}

type minMaxScaler struct {
	min, span float64
}

func fitMinMax(values []float64) minMaxScaler {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return minMaxScaler{min: lo, span: span}
}

func (s minMaxScaler) transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.min) / s.span
	}
	return out
}

func (s minMaxScaler) inverse(v float64) float64 {
	return v*s.span + s.min
}
