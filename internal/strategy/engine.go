package strategy

import (
	"errors"

	"CandleDash/internal/model"
)

// Classify maps one bar to a category. Volume must exceed the series mean for
// a directional call; price against the SMA picks the direction.
func Classify(close, sma float64, smaReady bool, volume, meanVolume float64) model.Category {
	if !smaReady {
		return model.CategoryUnclassified
	}
	switch {
	case volume > meanVolume && close > sma:
		return model.CategoryBullish
	case volume > meanVolume && close <= sma:
		return model.CategoryBearish
	default:
		return model.CategoryNeutral
	}
}

// ClassifyAll classifies aligned close/sma/ready/volume columns into a new
// category column.
func ClassifyAll(closes, sma []float64, ready []bool, volumes []float64, meanVolume float64) ([]model.Category, error) {
	n := len(closes)
	if len(sma) != n || len(ready) != n || len(volumes) != n {
		return nil, errors.New("classify: column lengths differ")
	}
	out := make([]model.Category, n)
	for i := range closes {
		out[i] = Classify(closes[i], sma[i], ready[i], volumes[i], meanVolume)
	}
	return out, nil
}
