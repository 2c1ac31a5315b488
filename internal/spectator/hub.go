// Package spectator streams resolved fights and arena status to read-only
// WebSocket watchers.
package spectator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/sim"
)

const (
	MessageFight  = "fight"
	MessageStatus = "status"

	DefaultBuffer = 64
	writeWait     = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type Fighter struct {
	ID   uint64 `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func fighter(e *models.Entity) Fighter {
	p := e.Position()
	return Fighter{ID: uint64(e.ID()), Kind: e.Kind().String(), Name: e.Name(), X: p.X, Y: p.Y}
}

// FightMessage reports one resolved fight, successful or not.
type FightMessage struct {
	Type     string    `json:"type"`
	At       time.Time `json:"at"`
	Attacker Fighter   `json:"attacker"`
	Defender Fighter   `json:"defender"`
	Success  bool      `json:"success"`
}

// StatusMessage mirrors the render header once per clock tick.
type StatusMessage struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Elapsed float64   `json:"elapsed"`
	Alive   int       `json:"alive"`
	Pending int       `json:"pending"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans messages out to every connected watcher. A watcher whose buffer is
// full misses the message instead of slowing the sender.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	buffer  int
	logger  log.Log
	dropped atomic.Uint64
}

func NewHub(buffer int, logger log.Log) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		buffer:  buffer,
		logger:  logger.With(log.String("component", "spectator")),
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts messages skipped for slow watchers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Watcher connected", log.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards inbound frames and unregisters the watcher on close.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Broadcast encodes msg as JSON and queues it for every watcher without
// blocking.
func (h *Hub) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", log.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) OnFight(attacker, defender *models.Entity, success bool) {
	h.Broadcast(FightMessage{
		Type:     MessageFight,
		At:       time.Now(),
		Attacker: fighter(attacker),
		Defender: fighter(defender),
		Success:  success,
	})
}

func (h *Hub) OnTick(st sim.Status) {
	h.Broadcast(StatusMessage{
		Type:    MessageStatus,
		At:      time.Now(),
		Elapsed: st.Elapsed.Seconds(),
		Alive:   len(st.Alive),
		Pending: st.Pending,
	})
}

// Close disconnects every watcher.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Serve exposes the hub on addr at /ws until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: writeWait}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	h.logger.Info("Spectator feed listening", log.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
