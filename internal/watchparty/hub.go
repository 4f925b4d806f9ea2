package watchparty

import (
	"strings"
	"sync"
	"unicode/utf8"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/metrics"
)

type room struct {
	id      string
	clients []*Client // join order; the oldest member is promoted first
	host    *Client
	state   *Message
}

func (r *room) remove(c *Client) {
	for i, v := range r.clients {
		if v == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return
		}
	}
}

// Hub owns every room. All room state is guarded by one mutex; sends never
// block because each client has a buffered channel and slow clients are
// dropped.
type Hub struct {
	mu         sync.Mutex
	rooms      map[string]*room
	bufferSize int
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{rooms: map[string]*room{}, bufferSize: bufferSize}
}

// Rooms returns the number of open rooms.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Join adds c to roomID. The first client of a room becomes its host; later
// clients receive the last known host state right away.
func (h *Hub) Join(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{id: roomID}
		h.rooms[roomID] = r
		metrics.WatchPartyRooms.Inc()
	}
	c.roomID = roomID
	r.clients = append(r.clients, c)
	if r.host == nil {
		r.host = c
	}
	metrics.WatchPartyClients.Inc()

	logging.Debug().Str("room", roomID).Str("client", c.id).Bool("host", r.host == c).Msg("[watchparty] join")

	h.deliverLocked(c, Message{Type: TypeWelcome, ClientID: c.id, IsHost: r.host == c, Members: len(r.clients)})
	if r.state != nil {
		resync := *r.state
		resync.Type = TypeSync
		h.deliverLocked(c, resync)
	}
	h.broadcastLocked(r, c, Message{Type: TypeMembers, Members: len(r.clients)})
}

// Leave removes c from its room. Calling it twice is harmless.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// Handle applies one inbound message from c.
func (h *Hub) Handle(c *Client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.rooms[c.roomID]
	if r == nil || c.closed {
		return
	}

	switch msg.Type {
	case TypeState:
		if r.host != c {
			h.deliverLocked(c, Message{Type: TypeError, Text: "only the host controls playback"})
			return
		}
		r.state = &Message{Type: TypeState, CurrentTime: msg.CurrentTime, Playing: msg.Playing, Episode: msg.Episode}
		h.broadcastLocked(r, c, *r.state)

	case TypeReport:
		if r.host == c || r.state == nil {
			return
		}
		if NeedsResync(msg.CurrentTime, r.state.CurrentTime) {
			resync := *r.state
			resync.Type = TypeSync
			h.deliverLocked(c, resync)
		}

	case TypeChat:
		text := truncate(strings.TrimSpace(msg.Text), maxChatLength)
		if text == "" {
			return
		}
		h.broadcastLocked(r, nil, Message{Type: TypeChat, Text: text, From: c.name, ClientID: c.id})

	default:
		h.deliverLocked(c, Message{Type: TypeError, Text: "unknown message type"})
	}
}

func (h *Hub) removeLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	metrics.WatchPartyClients.Dec()

	r := h.rooms[c.roomID]
	if r == nil {
		return
	}
	r.remove(c)
	logging.Debug().Str("room", r.id).Str("client", c.id).Msg("[watchparty] leave")

	if len(r.clients) == 0 {
		delete(h.rooms, r.id)
		metrics.WatchPartyRooms.Dec()
		return
	}
	if r.host == c {
		r.host = r.clients[0]
		h.deliverLocked(r.host, Message{Type: TypeHost, ClientID: r.host.id, IsHost: true})
	}
	h.broadcastLocked(r, nil, Message{Type: TypeMembers, Members: len(r.clients)})
}

func (h *Hub) deliverLocked(c *Client, m Message) {
	if c.closed {
		return
	}
	select {
	case c.send <- m:
	default:
		logging.Warn().Str("room", c.roomID).Str("client", c.id).Msg("[watchparty] send buffer full, dropping client")
		h.removeLocked(c)
	}
}

func (h *Hub) broadcastLocked(r *room, except *Client, m Message) {
	// removeLocked may shrink r.clients while we iterate
	for _, c := range append([]*Client(nil), r.clients...) {
		if c != except {
			h.deliverLocked(c, m)
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
