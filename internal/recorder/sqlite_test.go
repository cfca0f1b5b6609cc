package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"CandleDash/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_SaveLoadBars(t *testing.T) {
	r := openTestRecorder(t)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []model.OHLCV{
		{Time: start, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Time: start.AddDate(0, 0, 1), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: math.NaN()},
	}
	if err := r.SaveBars("AAPL", "1d", bars); err != nil {
		t.Fatal(err)
	}

	// Upsert replaces the existing row.
	bars[0].Close = 1.75
	if err := r.SaveBars("AAPL", "1d", bars[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := r.LoadBars("AAPL", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(got))
	}
	if !got[0].Time.Equal(start) || got[0].Close != 1.75 {
		t.Errorf("unexpected first bar %+v", got[0])
	}
	if !math.IsNaN(got[1].Volume) {
		t.Errorf("expected NaN volume to round-trip as NaN, got %v", got[1].Volume)
	}

	other, err := r.LoadBars("AAPL", "1wk")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("expected no weekly bars, got %d", len(other))
	}
}

func TestSQLiteRecorder_RecordRefresh(t *testing.T) {
	r := openTestRecorder(t)
	err := r.RecordRefresh(&RefreshEvent{
		Symbol:    "AAPL",
		Source:    "synthetic",
		Trigger:   model.TriggerSchedule,
		Bars:      250,
		LastClose: 101.5,
		LastSMA20: math.NaN(),
		Category:  model.CategoryUnclassified,
		Duration:  15 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM refresh_history WHERE symbol = ? AND last_sma20 IS NULL`, "AAPL").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 refresh row, got %d", count)
	}
}

func TestRebind(t *testing.T) {
	pg := &sqlRecorder{numbered: true}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("unexpected rebind: %q", got)
	}
	lite := &sqlRecorder{}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite query should be unchanged, got %q", got)
	}
}
