package spectator

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// client is one websocket watching one match. Writes go through send so a
// slow spectator never blocks the match that publishes.
type client struct {
	conn    *websocket.Conn
	matchID string
	send    chan []byte
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans match notices out to the websocket clients watching each match
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	logger  zerolog.Logger
}

// NewHub creates an empty hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		logger:  logger.With().Str("component", "SpectatorHub").Logger(),
	}
}

// register starts delivering notices of matchID to conn
func (h *Hub) register(matchID string, conn *websocket.Conn) *client {
	c := &client{conn: conn, matchID: matchID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.clients[matchID] == nil {
		h.clients[matchID] = make(map[*client]struct{})
	}
	h.clients[matchID][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.logger.Debug().Str("match_id", matchID).Msg("Spectator connected")
	return c
}

// unregister stops delivery to c and closes its connection
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.matchID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			c.close()
		}
		if len(set) == 0 {
			delete(h.clients, c.matchID)
		}
	}
	h.mu.Unlock()
	h.logger.Debug().Str("match_id", c.matchID).Msg("Spectator disconnected")
}

// Broadcast sends msg as JSON to every client watching matchID. Clients
// whose buffer is full are dropped.
func (h *Hub) Broadcast(matchID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to encode spectator message")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[matchID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Str("match_id", matchID).Msg("Dropping slow spectator")
		h.unregister(c)
	}
}

// Watchers reports how many clients watch matchID
func (h *Hub) Watchers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, id)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Str("match_id", c.matchID).Msg("Spectator write failed")
			go h.unregister(c)
			// drain until unregister closes send
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
