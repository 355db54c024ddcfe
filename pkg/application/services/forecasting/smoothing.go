package forecasting

import (
	"fmt"
	"math"
	"time"
)

// smoothingStrategy is additive Holt-Winters. Seasonality is only modelled
// when the series holds at least 12 weeks and two full seasons.
type smoothingStrategy struct {
	cfg ExponentialSmoothingConfig
}

const minSeasonalHistory = 12

var (
	levelGrid  = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	slopeGrid  = []float64{0.01, 0.05, 0.1, 0.2, 0.3}
	seasonGrid = []float64{0.01, 0.05, 0.1, 0.2, 0.3}
)

func (smoothingStrategy) MinHistory() int { return 5 }

func (s smoothingStrategy) FitAndForecast(h ProductHistory, weeksAhead int) ([]float64, error) {
	y := regularize(h)

	m := holtWinters{
		trend: s.cfg.Trend == "add" || s.cfg.Trend == "",
		phi:   1,
	}
	if m.trend && s.cfg.DampedTrend {
		m.phi = s.cfg.DampingTrend
		if m.phi <= 0 || m.phi > 1 {
			m.phi = 0.98
		}
	}
	period := s.cfg.SeasonalPeriods
	if (s.cfg.Seasonal == "add" || s.cfg.Seasonal == "") && period >= 2 &&
		len(y) >= minSeasonalHistory && len(y) >= 2*period {
		m.seasonal = true
		m.period = period
	}

	m = s.fitParameters(m, y)
	state, sse := m.filter(y)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, fmt.Errorf("holt-winters fit diverged")
	}

	out := m.forecast(state, len(y), weeksAhead)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite forecast at step %d", i+1)
		}
	}
	return out, nil
}

// fitParameters keeps configured smoothing parameters and grid-searches the
// rest by one-step squared error
func (s smoothingStrategy) fitParameters(m holtWinters, y []float64) holtWinters {
	alphas := pick(s.cfg.SmoothingLevel, levelGrid)
	betas := []float64{0}
	if m.trend {
		betas = pick(s.cfg.SmoothingTrend, slopeGrid)
	}
	gammas := []float64{0}
	if m.seasonal {
		gammas = pick(s.cfg.SmoothingSeasonal, seasonGrid)
	}

	best := m
	bestSSE := math.Inf(1)
	for _, a := range alphas {
		for _, b := range betas {
			for _, g := range gammas {
				candidate := m
				candidate.alpha, candidate.beta, candidate.gamma = a, b, g
				if _, sse := candidate.filter(y); sse < bestSSE {
					bestSSE = sse
					best = candidate
				}
			}
		}
	}
	return best
}

func pick(configured float64, grid []float64) []float64 {
	if configured > 0 {
		return []float64{configured}
	}
	return grid
}

// regularize re-grids the history onto strict weekly steps, filling missing weeks with zero
func regularize(h ProductHistory) []float64 {
	if h.Len() == 0 {
		return nil
	}
	start := h.Dates[0]
	weeks := int(h.LastDate().Sub(start).Round(24*time.Hour).Hours()/24/7) + 1
	if weeks < h.Len() {
		return append([]float64(nil), h.Values...)
	}
	y := make([]float64, weeks)
	for i, d := range h.Dates {
		idx := int(d.Sub(start).Round(24*time.Hour).Hours() / 24 / 7)
		if idx >= 0 && idx < weeks {
			y[idx] += h.Values[i]
		}
	}
	return y
}

type holtWinters struct {
	alpha, beta, gamma, phi float64
	trend                   bool
	seasonal                bool
	period                  int
}

type hwState struct {
	level  float64
	slope  float64
	season []float64
}

// filter runs the smoothing recursions and returns the final state with the
// sum of squared one-step errors
func (m holtWinters) filter(y []float64) (hwState, float64) {
	var st hwState
	start := 1

	if m.seasonal {
		p := m.period
		st.level = meanOf(y[:p])
		if m.trend {
			st.slope = (meanOf(y[p:2*p]) - meanOf(y[:p])) / float64(p)
		}
		st.season = make([]float64, p)
		for i := 0; i < p; i++ {
			st.season[i] = y[i] - st.level
		}
		start = 0
	} else {
		st.level = y[0]
		if m.trend && len(y) > 1 {
			st.slope = y[1] - y[0]
		}
	}

	var sse float64
	for t := start; t < len(y); t++ {
		s := 0.0
		if m.seasonal {
			s = st.season[t%m.period]
		}
		damped := m.phi * st.slope
		fitted := st.level + damped + s
		e := y[t] - fitted
		sse += e * e

		prevLevel := st.level
		st.level = m.alpha*(y[t]-s) + (1-m.alpha)*(prevLevel+damped)
		if m.trend {
			st.slope = m.beta*(st.level-prevLevel) + (1-m.beta)*damped
		}
		if m.seasonal {
			st.season[t%m.period] = m.gamma*(y[t]-st.level) + (1-m.gamma)*s
		}
	}
	return st, sse
}

func (m holtWinters) forecast(st hwState, n, steps int) []float64 {
	out := make([]float64, steps)
	var cumulative, factor float64 = 0, 1
	for h := 1; h <= steps; h++ {
		if m.trend {
			factor *= m.phi
			cumulative += factor
		}
		v := st.level + cumulative*st.slope
		if m.seasonal {
			v += st.season[(n+h-1)%m.period]
		}
		out[h-1] = v
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
