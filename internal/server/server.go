package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"CandleDash/internal/board"
	"CandleDash/internal/chart"
	"CandleDash/internal/metrics"
	"CandleDash/internal/model"

	"github.com/gin-gonic/gin"
)

// Server exposes the chart board over REST and per-chart websocket sessions.
type Server struct {
	Host    string
	Port    int
	Board   *board.Board
	Metrics *metrics.Metrics
	Padding chart.Padding
	Debug   bool

	engine  *gin.Engine
	httpSrv *http.Server

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewServer builds the gin engine and its routes.
func NewServer(host string, port int, b *board.Board, m *metrics.Metrics, pad chart.Padding, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if m == nil {
		m = metrics.NewMetrics()
	}

	s := &Server{
		Host:    host,
		Port:    port,
		Board:   b,
		Metrics: m,
		Padding: pad,
		Debug:   debug,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
	}
	s.engine.Use(gin.Recovery())
	if debug {
		s.engine.Use(gin.Logger())
	}
	s.engine.Use(corsLocalhost)

	s.setupRoutes()
	return s
}

// corsLocalhost lets dashboards served from another local port call the API.
func corsLocalhost(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
	}
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/tickers", s.getTickers)
	api.GET("/chart/:symbol", s.getChart)
	api.GET("/chart/:symbol/summary", s.getSummary)
	api.GET("/chart/:symbol/range", s.getRange)
	api.GET("/chart/:symbol/index-range", s.getIndexRange)

	s.engine.GET("/ws/:symbol", s.handleWebSocket)
	s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
}

// Handler returns the routed engine.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	s.mu.Lock()
	s.httpSrv = &http.Server{Addr: addr, Handler: s.engine}
	srv := s.httpSrv
	s.mu.Unlock()

	log.Printf("[INFO] serving dashboards on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

// Shutdown closes every websocket session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	srv := s.httpSrv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Publish rescales every open session on series.Symbol against the new
// snapshot and pushes the outcome to its client.
func (s *Server) Publish(series *model.EnrichedSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if c.symbol != series.Symbol {
			continue
		}
		r, updated, err := c.session.Replace(series)
		reply := s.rangeReply(c.symbol, r, updated, err, c.session)
		reply.Reason = joinReason("refresh", reply.Reason)
		s.deliverLocked(c, reply)
	}
}

func (s *Server) register(c *Client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.Metrics.Sessions.Inc()
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	s.Metrics.Sessions.Dec()
}

// deliver queues reply for c, dropping clients whose buffer is full.
func (s *Server) deliver(c *Client, reply *rangeResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliverLocked(c, reply)
}

func (s *Server) deliverLocked(c *Client, reply *rangeResponse) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.send <- reply:
	default:
		log.Printf("[WARN] websocket client for %s too slow, disconnecting", c.symbol)
		delete(s.clients, c)
		close(c.send)
	}
}

// observe counts a rescale outcome and returns the reason reported to callers.
func (s *Server) observe(symbol string, err error) string {
	var invalid *chart.InvalidRangeError
	switch {
	case err == nil:
		s.Metrics.ObserveRescale(metrics.RescaleOK)
		return ""
	case errors.Is(err, chart.ErrEmptyViewport):
		s.Metrics.ObserveRescale(metrics.RescaleEmpty)
		if s.Debug {
			log.Printf("[DEBUG] %s: empty viewport, keeping range", symbol)
		}
		return "empty_viewport"
	case errors.As(err, &invalid):
		s.Metrics.ObserveRescale(metrics.RescaleInvalid)
		log.Printf("[WARN] %s: %v, keeping range", symbol, err)
		return "invalid_range"
	default:
		s.Metrics.ObserveRescale(metrics.RescaleInvalid)
		log.Printf("[WARN] %s: rescale: %v", symbol, err)
		return err.Error()
	}
}

func joinReason(a, b string) string {
	if b == "" {
		return a
	}
	return a + ": " + b
}
