package watchparty

import (
	"time"

	"aniwatch-api/internal/logging"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket viewer. closed and roomID are guarded by the hub.
type Client struct {
	id     string
	name   string
	roomID string
	conn   *websocket.Conn
	send   chan Message
	closed bool
}

func (h *Hub) newClient(conn *websocket.Conn, name string) *Client {
	return &Client{
		id:   uuid.NewString(),
		name: name,
		conn: conn,
		send: make(chan Message, h.bufferSize),
	}
}

func (c *Client) ID() string { return c.id }

// Serve joins conn to roomID and pumps messages until the connection ends.
// It blocks for the lifetime of the connection.
func (h *Hub) Serve(conn *websocket.Conn, roomID, name string) {
	c := h.newClient(conn, name)
	h.Join(roomID, c)
	go c.writePump()
	c.readPump(h)
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("client", c.id).Msg("[watchparty] unexpected close")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Debug().Err(err).Str("client", c.id).Msg("[watchparty] bad message")
			continue
		}
		h.Handle(c, msg)
	}
}

func (c *Client) writePump() {
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
			data, err := json.Marshal(msg)
			if err != nil {
				logging.Error().Err(err).Msg("[watchparty] encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
