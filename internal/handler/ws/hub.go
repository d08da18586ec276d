// Package ws pushes generated alerts to websocket subscribers.
package ws

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"EnergyPulse/internal/domain/models"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Envelope is the frame written to subscribers.
type Envelope struct {
	Type   string               `json:"type"`
	TS     time.Time            `json:"ts"`
	Alerts []models.AlertRecord `json:"alerts"`
}

// Hub tracks connected clients and fans alert batches out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	l       *applogger.Logger
	now     func() time.Time
}

func NewHub(l *applogger.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), l: l, now: time.Now}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the request. The optional commodities query parameter
// restricts which alerts the client receives.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade failed", applogger.String("remote", c.RealIP()), applogger.Error(err))
		return nil
	}
	cl := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
		filter: xhttp.ParseList(c.QueryParam("commodities")),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.l.Info("ws client connected", applogger.String("remote", c.RealIP()), applogger.Int("clients", count))

	go cl.writePump()
	go cl.readPump()
	return nil
}

// Broadcast sends the batch to every client whose filter matches at least one
// alert. Slow clients drop frames instead of blocking the sweep.
func (h *Hub) Broadcast(alerts []models.AlertRecord) {
	if len(alerts) == 0 {
		return
	}
	ts := h.now().UTC()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		batch := cl.match(alerts)
		if len(batch) == 0 {
			continue
		}
		frame, err := json.Marshal(Envelope{Type: "alerts", TS: ts, Alerts: batch})
		if err != nil {
			h.l.Error("ws encode failed", applogger.Error(err))
			return
		}
		select {
		case cl.send <- frame:
		default:
			h.l.Warn("ws client too slow, frame dropped", applogger.Int("alerts", len(batch)))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	filter []string
}

func (c *client) match(alerts []models.AlertRecord) []models.AlertRecord {
	if len(c.filter) == 0 {
		return alerts
	}
	var out []models.AlertRecord
	for _, a := range alerts {
		if slices.Contains(c.filter, a.Commodity) {
			out = append(out, a)
		}
	}
	return out
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; clients do not send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
		c.hub.l.Debug("ws client disconnected")
	}()
	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
