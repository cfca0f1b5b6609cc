package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CandleDash/internal/model"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	if err := tn.SendWithRetry(context.Background(), "hello", 0); err != nil {
		t.Fatal(err)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestTelegramNotifier_SendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	err := tn.SendWithRetry(context.Background(), "hello", 0)
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestTelegramNotifier_PollDispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /tickers "}},{"update_id":8}]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			replies = append(replies, p["text"])
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	var commands []string
	next, err := tn.poll(context.Background(), tn.Client, 0, func(cmd string) string {
		commands = append(commands, cmd)
		return "ok:" + cmd
	})
	if err != nil {
		t.Fatal(err)
	}
	if next != 9 {
		t.Errorf("expected next offset 9, got %d", next)
	}
	if len(commands) != 1 || commands[0] != "/tickers" {
		t.Errorf("unexpected commands %v", commands)
	}
	if len(replies) != 1 || replies[0] != "ok:/tickers" {
		t.Errorf("unexpected replies %v", replies)
	}
}

func TestFormatChartSummary(t *testing.T) {
	s := &model.ChartSummary{
		Symbol:    "AAPL",
		LastTime:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LastClose: 110,
		LastSMA20: 100,
		SMAReady:  true,
		Category:  model.CategoryBullish,
		High:      120,
		Low:       80,
		Position:  0.75,
	}
	out := FormatChartSummary(s)
	for _, want := range []string{"AAPL", "2024-03-01", "SMA20: 100.00 (+10.0%)", "BULLISH", "position 75%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	s.SMAReady = false
	if out := FormatChartSummary(s); !strings.Contains(out, "SMA20: n/a") {
		t.Errorf("expected n/a SMA, got:\n%s", out)
	}
}

func TestFormatTickers(t *testing.T) {
	if got := FormatTickers(nil, time.Now()); !strings.Contains(got, "No charts") {
		t.Errorf("unexpected empty listing %q", got)
	}
	if got := FormatTickers([]string{"AAPL", "MSFT"}, time.Now()); !strings.Contains(got, "AAPL, MSFT") {
		t.Errorf("unexpected listing %q", got)
	}
}
