package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"CandleDash/internal/model"
)

// sqlRecorder holds the queries shared by the SQLite and Postgres backends.
// Queries are written with '?' placeholders and rebound per dialect.
type sqlRecorder struct {
	db       *sql.DB
	mu       sync.Mutex
	numbered bool // use $1, $2, ... placeholders
}

const upsertBarSQL = `INSERT INTO bars
	(symbol, bar_interval, ts, open, high, low, close, volume)
	VALUES (?,?,?,?,?,?,?,?)
	ON CONFLICT (symbol, bar_interval, ts) DO UPDATE SET
		open = excluded.open, high = excluded.high, low = excluded.low,
		close = excluded.close, volume = excluded.volume`

const selectBarsSQL = `SELECT ts, open, high, low, close, volume FROM bars
	WHERE symbol = ? AND bar_interval = ? ORDER BY ts`

const insertRefreshSQL = `INSERT INTO refresh_history
	(timestamp, symbol, source, trigger_type, bars, last_close, last_sma20,
	 category, mean_volume, duration_ms, error)
	VALUES (?,?,?,?,?,?,?,?,?,?,?)`

func (r *sqlRecorder) rebind(query string) string {
	if !r.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *sqlRecorder) SaveBars(symbol, interval string, bars []model.OHLCV) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(r.rebind(upsertBarSQL))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, interval, b.Time.Unix(),
			nullable(b.Open), nullable(b.High), nullable(b.Low), nullable(b.Close), nullable(b.Volume),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %s: %w", b.Time.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

func (r *sqlRecorder) LoadBars(symbol, interval string) ([]model.OHLCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(r.rebind(selectBarsSQL), symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var o, h, l, c, v sql.NullFloat64
		if err := rows.Scan(&ts, &o, &h, &l, &c, &v); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   fromNull(o),
			High:   fromNull(h),
			Low:    fromNull(l),
			Close:  fromNull(c),
			Volume: fromNull(v),
		})
	}
	return bars, rows.Err()
}

func (r *sqlRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.rebind(insertRefreshSQL),
		time.Now().Unix(), evt.Symbol, evt.Source, string(evt.Trigger), evt.Bars,
		nullable(evt.LastClose), nullable(evt.LastSMA20), string(evt.Category),
		nullable(evt.MeanVolume), evt.Duration.Milliseconds(), evt.Error,
	)
	return err
}

func (r *sqlRecorder) migrate(stmts []string) error {
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
