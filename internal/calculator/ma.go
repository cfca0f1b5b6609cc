package calculator

import (
	"errors"

	"CandleDash/internal/model"
)

// ErrNoData is returned when a calculation receives no values.
var ErrNoData = errors.New("no data provided")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA computes the trailing simple moving average at every index.
// ready[i] is false for the first period-1 values, where sma[i] is left at zero.
func RollingSMA(values []float64, period int) (sma []float64, ready []bool, err error) {
	if period <= 0 {
		return nil, nil, errors.New("period must be positive")
	}
	sma = make([]float64, len(values))
	ready = make([]bool, len(values))
	for i := period - 1; i < len(values); i++ {
		// Summing each window directly keeps every value exact to the window mean.
		v, err := CalculateSMA(values[:i+1], period)
		if err != nil {
			return nil, nil, err
		}
		sma[i] = v
		ready[i] = true
	}
	return sma, ready, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// ExtractCloses returns the close column of bars.
func ExtractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// ExtractVolumes returns the volume column of bars.
func ExtractVolumes(bars []model.OHLCV) []float64 {
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}
	return volumes
}
