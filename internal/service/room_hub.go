package service

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/observability"
)

const roomSendBufferSize = 16

// RoomConnectionOptions wraps identity extracted during the HTTP upgrade.
type RoomConnectionOptions struct {
	RoomID uint
	UserID uint
	Name   string
}

// RoomHub tracks the websocket clients attached to each room channel and
// fans presence and timer events out to them. Scoped to the process.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*roomClient]struct{}
	log   zerolog.Logger
}

type roomClient struct {
	conn    *websocket.Conn
	send    chan dto.RoomEvent
	options RoomConnectionOptions
}

// NewRoomHub builds an empty hub.
func NewRoomHub(logger zerolog.Logger) *RoomHub {
	return &RoomHub{
		rooms: make(map[uint]map[*roomClient]struct{}),
		log:   logger.With().Str("component", "room_hub").Logger(),
	}
}

// ServeConnection attaches a websocket client to its room channel and blocks
// until the peer disconnects. The client is always released on return so no
// periodic writer leaks past the connection's lifetime.
func (h *RoomHub) ServeConnection(conn *websocket.Conn, opts RoomConnectionOptions) {
	client := &roomClient{
		conn:    conn,
		send:    make(chan dto.RoomEvent, roomSendBufferSize),
		options: opts,
	}

	h.register(client)
	defer h.unregister(client)

	go client.writePump()

	h.Broadcast(opts.RoomID, dto.RoomEvent{
		Type:      "joined",
		RoomID:    opts.RoomID,
		UserID:    opts.UserID,
		Name:      opts.Name,
		Timestamp: time.Now(),
	})

	// Read loop: the client sends nothing meaningful, but reading is what
	// detects the close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.Broadcast(opts.RoomID, dto.RoomEvent{
		Type:      "left",
		RoomID:    opts.RoomID,
		UserID:    opts.UserID,
		Name:      opts.Name,
		Timestamp: time.Now(),
	})
}

// Broadcast delivers an event to every client attached to the room. Slow
// clients with a full send buffer are skipped rather than blocked on.
func (h *RoomHub) Broadcast(roomID uint, event dto.RoomEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Uint("room_id", roomID).Uint("user_id", client.options.UserID).Msg("room event dropped, send buffer full")
		}
	}
}

// Attached reports how many clients are listening on the room channel.
func (h *RoomHub) Attached(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *RoomHub) register(client *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := client.options.RoomID
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*roomClient]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	observability.RoomSessions().Inc()
}

func (h *RoomHub) unregister(client *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := client.options.RoomID
	if clients, ok := h.rooms[roomID]; ok {
		if _, attached := clients[client]; attached {
			delete(clients, client)
			close(client.send)
			observability.RoomSessions().Dec()
		}
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (c *roomClient) writePump() {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}
