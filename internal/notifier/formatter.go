package notifier

import (
	"fmt"
	"strings"
	"time"

	"CandleDash/internal/model"
)

func categoryIcon(c model.Category) string {
	switch c {
	case model.CategoryBullish:
		return "🟢"
	case model.CategoryBearish:
		return "🔴"
	case model.CategoryNeutral:
		return "⚪"
	default:
		return "⏳"
	}
}

// FormatChartSummary formats the latest state of one chart.
func FormatChartSummary(s *model.ChartSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", s.Symbol, s.LastTime.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", s.LastClose))
	if s.SMAReady {
		dev := 0.0
		if s.LastSMA20 != 0 {
			dev = (s.LastClose - s.LastSMA20) / s.LastSMA20 * 100
		}
		b.WriteString(fmt.Sprintf("SMA20: %.2f (%+.1f%%)\n", s.LastSMA20, dev))
	} else {
		b.WriteString("SMA20: n/a\n")
	}
	b.WriteString(fmt.Sprintf("Signal: %s %s\n", categoryIcon(s.Category), s.Category))
	b.WriteString(fmt.Sprintf("Range: %.2f - %.2f (position %.0f%%)\n", s.Low, s.High, s.Position*100))
	b.WriteString(fmt.Sprintf("Mean volume: %.0f | bars: %d\n", s.MeanVolume, s.Bars))
	b.WriteString(fmt.Sprintf("Source: %s | updated %s\n", s.Source, s.UpdatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatCategoryAlert formats a change of the latest bar's category.
func FormatCategoryAlert(s *model.ChartSummary, prev model.Category) string {
	return fmt.Sprintf("%s <b>%s signal change</b>\n\n%s → %s\nClose %.2f vs SMA20 %.2f on %s",
		categoryIcon(s.Category), s.Symbol, prev, s.Category,
		s.LastClose, s.LastSMA20, s.LastTime.Format("2006-01-02"))
}

// FormatRange formats a y-axis range for a viewport.
func FormatRange(symbol string, vp model.Viewport, r model.YRange) string {
	return fmt.Sprintf("📐 <b>%s</b> %s → %s\ny-axis: %.2f - %.2f",
		symbol, vp.Start.Format("2006-01-02"), vp.End.Format("2006-01-02"), r.Min, r.Max)
}

// FormatTickers lists the tickers on the board.
func FormatTickers(symbols []string, at time.Time) string {
	if len(symbols) == 0 {
		return "No charts built yet."
	}
	return fmt.Sprintf("📈 <b>Tickers</b> (%s)\n%s", at.Format("15:04"), strings.Join(symbols, ", "))
}

// FormatRefreshFailure formats a chart build failure.
func FormatRefreshFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ %s: chart refresh failed: %v", symbol, err)
}
