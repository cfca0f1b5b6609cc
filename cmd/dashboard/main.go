package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"CandleDash/internal/board"
	"CandleDash/internal/chart"
	"CandleDash/internal/collector"
	"CandleDash/internal/config"
	"CandleDash/internal/metrics"
	"CandleDash/internal/model"
	"CandleDash/internal/notifier"
	"CandleDash/internal/recorder"
	"CandleDash/internal/scheduler"
	"CandleDash/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CandleDash starting...")

	_ = godotenv.Load(".env")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	debug := cfg.LogLevel == "DEBUG"

	// Init fetcher
	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init data source: %v", err)
	}
	log.Printf("[INFO] data source: %s, symbols: %v", fetcher.Name(), cfg.DataSource.Symbols)

	// Init recorder
	rec := newRecorder(cfg)
	defer rec.Close()

	col := collector.NewCollector(fetcher, rec, cfg.DataSource.Days, cfg.DataSource.Interval)
	b := board.New()
	m := metrics.NewMetrics()
	pad := chart.Padding{Low: *cfg.Chart.PadLow, High: *cfg.Chart.PadHigh}

	// Init Telegram notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, b, n, rec, m, cfg.DataSource.Symbols)
	sched.Padding = pad
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}

	srv := server.NewServer(cfg.Server.Host, cfg.Server.Port, b, m, pad, debug)
	sched.OnRefresh(srv.Publish)

	built, _ := sched.RefreshAll(model.TriggerStartup)
	log.Printf("[INFO] built %d/%d charts", built, len(cfg.DataSource.Symbols))

	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("[FATAL] server: %v", err)
		}
	}()

	log.Println("[INFO] CandleDash is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] server shutdown: %v", err)
	}
	log.Println("[INFO] CandleDash stopped")
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	default:
		start, err := cfg.SyntheticStart()
		if err != nil {
			return nil, err
		}
		return collector.NewSyntheticFetcher(cfg.Synthetic.Seed, cfg.Synthetic.Bars,
			cfg.Synthetic.MaxValue, cfg.Synthetic.Mode, start), nil
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	switch cfg.Database.Driver {
	case "postgres":
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, using noop: %v", err)
			return recorder.NewNoopRecorder()
		}
		return pr
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Printf("[WARN] create data dir failed, using noop: %v", err)
			return recorder.NewNoopRecorder()
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			return recorder.NewNoopRecorder()
		}
		return sr
	default:
		return recorder.NewNoopRecorder()
	}
}
