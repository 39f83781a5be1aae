// Package ws serves the live article feed over WebSocket. Every client
// receives the current cache on connect and every accepted snapshot after
// that; clients that cannot keep up are dropped.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// Message types sent to clients.
const (
	TypeSnapshot = "snapshot"
)

// Defaults applied by NewHub for zero Config fields.
const (
	DefaultSendBuffer   = 16
	DefaultPingInterval = 30 * time.Second
	DefaultPongTimeout  = 60 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// snapshotSource returns the cache contents a new client starts from.
type snapshotSource interface {
	Snapshot() domain.Snapshot
}

// snapshotNotifier reports every snapshot the syncer accepts.
type snapshotNotifier interface {
	OnSnapshot(fn func(domain.Snapshot)) (unsubscribe func())
}

// Config holds feed settings.
type Config struct {
	// AllowedOrigins lists the browser origins that may connect. "*" allows
	// any origin; an empty list falls back to same-origin only.
	AllowedOrigins []string
	SendBuffer     int
	PingInterval   time.Duration
	PongTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Message is the envelope of every frame the feed writes.
type Message struct {
	Type      string             `json:"type"`
	Articles  map[string]Article `json:"articles"`
	Timestamp int64              `json:"timestamp"`
}

// Article is one record inside a snapshot frame.
type Article struct {
	Content     string              `json:"content"`
	History     []domain.Revision   `json:"history"`
	Discuss     []domain.Discussion `json:"discuss"`
	LastUpdated *time.Time          `json:"lastUpdated,omitempty"`
}

// Hub tracks connected clients and fans snapshots out to them.
type Hub struct {
	log      *slog.Logger
	cache    snapshotSource
	notifier snapshotNotifier
	cfg      Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub. Call Run to start relaying snapshots.
func NewHub(logger *slog.Logger, cache snapshotSource, notifier snapshotNotifier, cfg Config) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = DefaultPongTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	h := &Hub{
		log:      logger.With("component", "ws"),
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		clients:  make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run relays accepted snapshots until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	unsubscribe := h.notifier.OnSnapshot(h.broadcast)
	<-ctx.Done()
	unsubscribe()

	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}
	if !h.add(c) {
		conn.Close()
		return
	}

	h.log.InfoContext(r.Context(), "feed client connected",
		slog.String("client", c.id),
		slog.String("remote", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// add registers c and queues the current cache as its first frame. Both
// happen under the hub lock so no broadcast can slip in between.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	frame, err := encode(h.cache.Snapshot())
	if err != nil {
		h.log.Error("encode snapshot", slog.String("error", err.Error()))
		return false
	}
	c.send <- frame
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) broadcast(snap domain.Snapshot) {
	frame, err := encode(snap)
	if err != nil {
		h.log.Error("encode snapshot", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.log.Warn("feed client too slow, dropping", slog.String("client", c.id))
			h.removeLocked(c)
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("feed client read error",
					slog.String("client", c.id),
					slog.String("error", err.Error()))
			}
			h.log.Info("feed client disconnected", slog.String("client", c.id))
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return origin == "" || sameOrigin(r, origin)
	}
	return slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin)
}

func sameOrigin(r *http.Request, origin string) bool {
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func encode(snap domain.Snapshot) ([]byte, error) {
	msg := Message{
		Type:      TypeSnapshot,
		Articles:  make(map[string]Article, len(snap)),
		Timestamp: time.Now().Unix(),
	}
	for title, a := range snap {
		msg.Articles[title] = Article{
			Content:     a.Content,
			History:     nonNil(a.History),
			Discuss:     nonNil(a.Discuss),
			LastUpdated: a.LastUpdated,
		}
	}
	return json.Marshal(msg)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
