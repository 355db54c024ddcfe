package forecasting

import (
	"time"
)

// lagWindow is the number of past weeks a feature row depends on
const lagWindow = 4

// Feature columns, in row order
var featureNames = []string{
	"WeekOfYear",
	"Month",
	"IsHoliday",
	"Lag1",
	"Lag2",
	"Lag3",
	"RollingMean4",
}

// lagBuffer holds the most recent weekly values, newest first
type lagBuffer [lagWindow]float64

func newLagBuffer(values []float64) lagBuffer {
	var b lagBuffer
	n := len(values)
	for i := 0; i < lagWindow; i++ {
		b[i] = values[n-1-i]
	}
	return b
}

// push shifts in a new value, dropping the oldest
func (b lagBuffer) push(v float64) lagBuffer {
	copy(b[1:], b[:lagWindow-1])
	b[0] = v
	return b
}

func (b lagBuffer) mean() float64 {
	var sum float64
	for _, v := range b {
		sum += v
	}
	return sum / lagWindow
}

func featureRow(date time.Time, lags lagBuffer, cal HolidayCalendar) []float64 {
	_, isoWeek := date.ISOWeek()
	holiday := 0.0
	if weekHasHoliday(cal, date) {
		holiday = 1.0
	}
	return []float64{
		float64(isoWeek),
		float64(date.Month()),
		holiday,
		lags[0],
		lags[1],
		lags[2],
		lags.mean(),
	}
}

// trainingSet builds one row per week that has a full lag window behind it.
// The rolling mean covers the four weeks before the target week.
func trainingSet(h ProductHistory, cal HolidayCalendar) ([][]float64, []float64) {
	n := len(h.Values)
	if n <= lagWindow {
		return nil, nil
	}

	X := make([][]float64, 0, n-lagWindow)
	y := make([]float64, 0, n-lagWindow)
	for t := lagWindow; t < n; t++ {
		lags := newLagBuffer(h.Values[:t])
		X = append(X, featureRow(h.Dates[t], lags, cal))
		y = append(y, h.Values[t])
	}
	return X, y
}
