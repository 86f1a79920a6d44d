// Package ws exposes the live-update endpoint. Each connection
// subscribes to change-event topics and receives every future event
// as a JSON message; there is no replay, a fresh client fetches its
// initial snapshot through the regular API.
package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/eventbus"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 512
	eventBuffer    = 64
)

type Registry struct {
	bus      *eventbus.Bus
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*connection
}

func NewRegistry(bus *eventbus.Bus) *Registry {
	return &Registry{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[string]*connection),
	}
}

func Register(mux *http.ServeMux, reg *Registry) {
	mux.HandleFunc("GET /ws", reg.Serve)
}

// Len reports the number of live connections.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.conns)
}

// Serve upgrades the request and pumps subscribed events to the
// client until it goes away. Topics come from the `topics` query
// parameter (comma separated); a missing parameter subscribes the
// catalog topic.
func (reg *Registry) Serve(w http.ResponseWriter, r *http.Request) {
	const op = "Registry.Serve"
	log := slog.With("op", op)

	topics, err := parseTopics(r.URL.Query().Get("topics"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sock, err := reg.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "err", err)
		return
	}

	c := &connection{
		id:   uuid.NewString(),
		sock: sock,
		sub:  reg.bus.Subscribe(eventBuffer, topics...),
	}
	reg.add(c)
	log.Info("client connected", "connID", c.id, "topics", topics)

	go c.writePump()
	c.readPump()

	reg.remove(c)
	log.Info("client disconnected", "connID", c.id)
}

func (reg *Registry) add(c *connection) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.conns[c.id] = c
}

// remove drops the connection without emitting any event.
func (reg *Registry) remove(c *connection) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.conns, c.id)
	c.sub.Close()
	_ = c.sock.Close()
}

// CloseAll tears down every live connection, used at shutdown.
func (reg *Registry) CloseAll() {
	reg.mu.Lock()
	conns := make([]*connection, 0, len(reg.conns))
	for _, c := range reg.conns {
		conns = append(conns, c)
	}
	reg.mu.Unlock()

	for _, c := range conns {
		reg.remove(c)
	}
}

func parseTopics(raw string) ([]string, error) {
	if raw == "" {
		return []string{domain.TopicCatalog}, nil
	}

	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == domain.TopicCatalog || t == domain.TopicCarts ||
			strings.HasPrefix(t, domain.TopicCarts+":") {
			topics = append(topics, t)
			continue
		}
		return nil, &unknownTopicError{t}
	}
	return topics, nil
}

type unknownTopicError struct {
	topic string
}

func (e *unknownTopicError) Error() string {
	return "unknown topic " + e.topic
}
