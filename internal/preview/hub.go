// Package preview streams solver progress to websocket viewers.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

const (
	// Time allowed to write a message to the viewer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the viewer
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Frames queued per viewer before events are dropped
	sendBuffer = 256
)

// Hub fans solver events out to connected viewers. Publishing never blocks:
// a viewer whose queue is full misses the event.
type Hub struct {
	cfg      config.PreviewConfig
	limiter  *ConnLimiter
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	viewers map[*viewer]struct{}
	grid    *hexgrid.Grid
	gridMsg []byte
	closed  bool

	dropped atomic.Int64
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub using the preview settings.
func NewHub(cfg config.PreviewConfig) *Hub {
	h := &Hub{
		cfg:     cfg,
		limiter: NewConnLimiter(cfg.Connections),
		viewers: make(map[*viewer]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := h.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Preview connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}
	return h
}

// Handler returns the HTTP routes of the preview server.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", h.handleHealth)
	return mux
}

// ListenAndServe serves the preview until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Preview server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"viewers": int64(h.Viewers()),
		"dropped": h.Dropped(),
	})
}

// ServeHTTP upgrades a viewer connection and blocks until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := realIP(r)

	if !h.limiter.TryAcquire(clientIP) {
		logger.Warning("Preview connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}
	defer h.limiter.Release(clientIP)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("Preview upgrade failed", "error", err)
		return
	}

	v := &viewer{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(v) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "preview closed"))
		conn.Close()
		return
	}
	logger.Debug("Preview viewer connected", "client_ip", clientIP)

	go v.writePump()
	v.readPump(h.cfg.WebSocket.MaxMessageSize)
	h.remove(v)
	logger.Debug("Preview viewer disconnected", "client_ip", clientIP)
}

func (h *Hub) add(v *viewer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.gridMsg != nil {
		v.send <- h.gridMsg
	}
	h.viewers[v] = struct{}{}
	return true
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[v]; ok {
		delete(h.viewers, v)
		close(v.send)
	}
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Dropped returns how many frames were skipped for slow viewers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for v := range h.viewers {
		delete(h.viewers, v)
		close(v.send)
	}
}

// SetGrid announces the lattice being solved.
func (h *Hub) SetGrid(g *hexgrid.Grid) {
	opts := g.Options()
	payload := GridPayload{
		Radius:      opts.Radius,
		Layers:      opts.Layers,
		Underground: opts.Underground,
		Cells:       make([]CellInfo, 0, g.Graph.Len()),
	}
	for _, c := range g.Graph.Cells() {
		coord, _ := g.Coord(c.ID)
		payload.Cells = append(payload.Cells, CellInfo{
			ID:     int(c.ID),
			Q:      coord.Q,
			R:      coord.R,
			Layer:  coord.Layer,
			Status: c.Status.String(),
			Edge:   c.IsEdge,
			Entry:  c.IsEntry,
			Path:   c.IsPath,
		})
	}

	data, err := json.Marshal(Message{Type: MsgGrid, Payload: payload})
	if err != nil {
		logger.Error("Failed to encode preview grid", "error", err)
		return
	}

	h.mu.Lock()
	h.grid = g
	h.gridMsg = data
	h.mu.Unlock()
	h.broadcastRaw(data)
}

// Attempt announces a new solve attempt.
func (h *Hub) Attempt(attempt int, seed int64) {
	h.broadcast(Message{Type: MsgAttempt, Payload: AttemptPayload{Attempt: attempt, Seed: seed}})
}

// Collapse publishes one solver event. It has the signature of
// wfc.Options.OnCollapse.
func (h *Hub) Collapse(ev wfc.Event) {
	p := CollapsePayload{
		Seq:        ev.Seq,
		Cell:       int(ev.Cell),
		State:      ev.State.String(),
		Candidates: ev.Candidates,
	}

	h.mu.RLock()
	grid := h.grid
	h.mu.RUnlock()
	if grid != nil {
		if coord, ok := grid.Coord(ev.Cell); ok {
			p.Q, p.R, p.Layer = coord.Q, coord.R, coord.Layer
		}
	}
	if ev.Assignment != nil {
		p.Tile = ev.Assignment.Tile.Name
		p.Rotation = ev.Assignment.Orientation.Rotation
		p.Inverted = ev.Assignment.Orientation.Inverted
	}
	h.broadcast(Message{Type: MsgCollapse, Payload: p})
}

// Done publishes the final summary.
func (h *Hub) Done(p DonePayload) {
	h.broadcast(Message{Type: MsgDone, Payload: p})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode preview message", "type", msg.Type, "error", err)
		return
	}
	h.broadcastRaw(data)
}

func (h *Hub) broadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// readPump discards viewer input and returns when the connection fails.
func (v *viewer) readPump(limit int64) {
	if limit > 0 {
		v.conn.SetReadLimit(limit)
	}
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Debug("Preview read error", "error", err)
			}
			return
		}
	}
}

func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
