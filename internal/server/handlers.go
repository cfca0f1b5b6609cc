package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"CandleDash/internal/board"
	"CandleDash/internal/chart"
	"CandleDash/internal/model"

	"github.com/gin-gonic/gin"
)

func (s *Server) getHealth(c *gin.Context) {
	s.mu.Lock()
	sessions := len(s.clients)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"charts":   len(s.Board.Symbols()),
		"sessions": sessions,
	})
}

func (s *Server) getTickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tickers": s.Board.Symbols()})
}

// series resolves the :symbol parameter, answering 404 when no chart was built.
func (s *Server) series(c *gin.Context) (*model.EnrichedSeries, bool) {
	symbol := strings.ToUpper(c.Param("symbol"))
	es, err := s.Board.Get(symbol)
	if errors.Is(err, board.ErrUnknownSymbol) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no data for " + symbol})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}
	return es, true
}

func (s *Server) getChart(c *gin.Context) {
	es, ok := s.series(c)
	if !ok {
		return
	}
	bars := es.Bars
	if start, end := c.Query("start"), c.Query("end"); start != "" || end != "" {
		vp, err := chart.ParseViewport(start, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		bars = chart.Visible(es, vp)
	}
	c.JSON(http.StatusOK, newSeriesResponse(es, bars))
}

func (s *Server) getSummary(c *gin.Context) {
	es, ok := s.series(c)
	if !ok {
		return
	}
	sum, err := board.Summarize(es, time.Now())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(sum))
}

func (s *Server) getRange(c *gin.Context) {
	es, ok := s.series(c)
	if !ok {
		return
	}
	vp, err := chart.ParseViewport(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	pad, err := s.padding(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	r, err := chart.ComputeRange(es, vp, pad)
	s.respondRange(c, es.Symbol, r, err)
}

func (s *Server) getIndexRange(c *gin.Context) {
	es, ok := s.series(c)
	if !ok {
		return
	}
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "from: " + err.Error()})
		return
	}
	to, err := strconv.Atoi(c.DefaultQuery("to", strconv.Itoa(es.Len()-1)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "to: " + err.Error()})
		return
	}
	vp, err := chart.ViewportFromIndex(es, from, to)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	r, err := chart.ComputeRange(es, vp, s.Padding)
	s.respondRange(c, es.Symbol, r, err)
}

// respondRange answers 200 for retainable failures so the client keeps its
// current axis; only unexpected errors become 422.
func (s *Server) respondRange(c *gin.Context, symbol string, r model.YRange, err error) {
	reason := s.observe(symbol, err)
	if err != nil && !chart.Retainable(err) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: reason})
		return
	}
	resp := rangeResponse{Symbol: symbol, Updated: err == nil, Reason: reason}
	if err == nil {
		resp.YMin, resp.YMax = num(r.Min), num(r.Max)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) padding(c *gin.Context) (chart.Padding, error) {
	pad := s.Padding
	if v := c.Query("pad_low"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !finite(f) || f < 0 || f >= 1 {
			return pad, errors.New("pad_low must be in [0, 1)")
		}
		pad.Low = f
	}
	if v := c.Query("pad_high"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !finite(f) || f < 0 {
			return pad, errors.New("pad_high must be non-negative")
		}
		pad.High = f
	}
	return pad, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
