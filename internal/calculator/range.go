package calculator

import (
	"errors"
	"math"

	"CandleDash/internal/model"
)

// CalculateRange scans the most recent lookback bars and returns the high and low.
// A lookback <= 0 scans the whole slice. NaN highs and lows are ignored.
func CalculateRange(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, ErrNoData
	}
	n := len(bars)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	if math.IsInf(high, 0) || math.IsInf(low, 0) {
		return 0, 0, errors.New("no usable high/low in range")
	}
	return high, low, nil
}

// PadRange widens [low, high] multiplicatively: low*(1-padLow), high*(1+padHigh).
func PadRange(low, high, padLow, padHigh float64) (float64, float64) {
	return low * (1 - padLow), high * (1 + padHigh)
}

// CalculatePosition returns where the current price sits within the range (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
