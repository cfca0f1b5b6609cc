package collector

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"CandleDash/internal/model"
)

// Synthetic generation modes.
const (
	// ModeDrift draws four values per bar and lifts them by a bias that grows
	// by one each bar, giving an upward-drifting random series.
	ModeDrift = "drift"
	// ModeUniform draws open/close anywhere in [0, max], highs from the top
	// fifth and lows from the bottom fifth.
	ModeUniform = "uniform"
)

// SyntheticFetcher generates reproducible random bars. The same symbol and
// seed always produce the same series.
type SyntheticFetcher struct {
	Seed       int64
	Bars       int
	MaxValue   float64
	Mode       string
	Start      time.Time
	VolumeBase float64
}

// NewSyntheticFetcher creates a generator; zero values fall back to 1000 bars
// of drift data with max value 100 starting 2023-01-01.
func NewSyntheticFetcher(seed int64, bars int, maxValue float64, mode string, start time.Time) *SyntheticFetcher {
	if bars <= 0 {
		bars = 1000
	}
	if maxValue <= 0 {
		maxValue = 100
	}
	if mode == "" {
		mode = ModeDrift
	}
	if start.IsZero() {
		start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &SyntheticFetcher{
		Seed:       seed,
		Bars:       bars,
		MaxValue:   maxValue,
		Mode:       mode,
		Start:      start,
		VolumeBase: 1000000,
	}
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

func (f *SyntheticFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars := f.generate(symbol)
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *SyntheticFetcher) FetchWeeklyBars(ctx context.Context, symbol string, weeks int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars := AggregateWeekly(f.generate(symbol))
	if weeks > 0 && len(bars) > weeks {
		bars = bars[len(bars)-weeks:]
	}
	return bars, nil
}

func (f *SyntheticFetcher) generate(symbol string) []model.OHLCV {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	r := rand.New(rand.NewSource(f.Seed ^ int64(h.Sum64())))

	bars := make([]model.OHLCV, f.Bars)
	bias := 0.0
	for i := range bars {
		var b model.OHLCV
		if f.Mode == ModeUniform {
			b = f.uniformBar(r)
		} else {
			b = f.driftBar(r, bias)
			bias += 1.0
		}
		b.Time = f.Start.AddDate(0, 0, i)
		b.Volume = math.Round(f.VolumeBase * (0.5 + r.Float64()))
		bars[i] = b
	}
	return bars
}

func (f *SyntheticFetcher) driftBar(r *rand.Rand, bias float64) model.OHLCV {
	var vals [4]float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range vals {
		vals[i] = r.Float64() * f.MaxValue
		lo = math.Min(lo, vals[i])
		hi = math.Max(hi, vals[i])
	}
	return model.OHLCV{
		Open:  vals[r.Intn(4)] + bias,
		High:  hi + bias,
		Low:   lo + bias,
		Close: vals[r.Intn(4)] + bias,
	}
}

func (f *SyntheticFetcher) uniformBar(r *rand.Rand) model.OHLCV {
	scale := f.MaxValue / 100
	randInt := func(min, max int) float64 { return float64(min+r.Intn(max-min+1)) * scale }
	return model.OHLCV{
		Open:  randInt(0, 100),
		High:  randInt(80, 100),
		Low:   randInt(0, 20),
		Close: randInt(0, 100),
	}
}
