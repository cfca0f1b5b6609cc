package recorder

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// PostgresRecorder persists bars and refresh history to PostgreSQL.
type PostgresRecorder struct {
	sqlRecorder
}

// NewPostgresRecorder connects with dsn and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{sqlRecorder{db: db, numbered: true}}
	if err := r.migrate([]string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol       TEXT   NOT NULL,
			bar_interval TEXT   NOT NULL,
			ts           BIGINT NOT NULL,
			open         DOUBLE PRECISION,
			high         DOUBLE PRECISION,
			low          DOUBLE PRECISION,
			close        DOUBLE PRECISION,
			volume       DOUBLE PRECISION,
			PRIMARY KEY (symbol, bar_interval, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_history (
			id           BIGSERIAL PRIMARY KEY,
			timestamp    BIGINT NOT NULL,
			symbol       TEXT,
			source       TEXT,
			trigger_type TEXT,
			bars         INTEGER,
			last_close   DOUBLE PRECISION,
			last_sma20   DOUBLE PRECISION,
			category     TEXT,
			mean_volume  DOUBLE PRECISION,
			duration_ms  BIGINT,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_history(timestamp)`,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	return r.db.Close()
}
