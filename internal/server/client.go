package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"CandleDash/internal/board"
	"CandleDash/internal/chart"
	"CandleDash/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection driving one viewport session.
type Client struct {
	srv     *Server
	conn    *websocket.Conn
	symbol  string
	session *chart.Session
	send    chan *rangeResponse
}

// clientMessage is a viewport event from the browser.
type clientMessage struct {
	Type  string `json:"type"` // viewport | index | reset
	Start string `json:"start"`
	End   string `json:"end"`
	From  *int   `json:"from"`
	To    *int   `json:"to"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	es, err := s.Board.Get(symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, board.ErrUnknownSymbol) {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] upgrade websocket: %v", err)
		return
	}

	session := chart.NewSession(es, s.Padding)
	if s.Debug {
		session.OnTransition(func(from, to chart.State) {
			log.Printf("[DEBUG] %s session %s -> %s", symbol, from, to)
		})
	}
	client := &Client{
		srv:     s,
		conn:    conn,
		symbol:  symbol,
		session: session,
		send:    make(chan *rangeResponse, 16),
	}
	s.register(client)

	r, ok := session.Range()
	initial := &rangeResponse{Type: "range", Symbol: symbol, Updated: ok}
	if ok {
		initial.YMin, initial.YMax = num(r.Min), num(r.Max)
	}
	s.deliver(client, initial)

	go client.writePump()
	go client.readPump()
}

// handle applies one client event to the session.
func (c *Client) handle(raw []byte) *rangeResponse {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return c.retained("bad message: " + err.Error())
	}

	var (
		r       model.YRange
		updated bool
		err     error
	)
	switch msg.Type {
	case "viewport":
		vp, perr := chart.ParseViewport(msg.Start, msg.End)
		if perr != nil {
			return c.retained("bad viewport: " + perr.Error())
		}
		r, updated, err = c.session.Apply(vp)
	case "index":
		if msg.From == nil || msg.To == nil {
			return c.retained("index event needs from and to")
		}
		r, updated, err = c.session.ApplyIndex(*msg.From, *msg.To)
	case "reset":
		r, updated, err = c.session.Reset()
	default:
		return c.retained("unknown event type " + msg.Type)
	}
	return c.srv.rangeReply(c.symbol, r, updated, err, c.session)
}

// retained reports the range in effect without touching the session.
func (c *Client) retained(reason string) *rangeResponse {
	reply := &rangeResponse{Type: "range", Symbol: c.symbol, Reason: reason}
	if r, ok := c.session.Range(); ok {
		reply.YMin, reply.YMax = num(r.Min), num(r.Max)
	}
	return reply
}

func (s *Server) rangeReply(symbol string, r model.YRange, updated bool, err error, session *chart.Session) *rangeResponse {
	reply := &rangeResponse{
		Type:    "range",
		Symbol:  symbol,
		Updated: updated,
		Reason:  s.observe(symbol, err),
	}
	if _, ok := session.Range(); ok {
		reply.YMin, reply.YMax = num(r.Min), num(r.Max)
	}
	return reply
}

func (c *Client) readPump() {
	defer func() {
		c.srv.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] websocket %s: %v", c.symbol, err)
			}
			return
		}
		c.srv.deliver(c, c.handle(message))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case reply, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(reply); err != nil {
				log.Printf("[WARN] websocket %s write: %v", c.symbol, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
