package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Object updates carry the full document, so the limit is far
	// above a chat line.
	maxMessageSize = 1 << 20

	sendBufferSize = 256
)

// Client is a middleman between one websocket connection and the room
// it joined. A client belongs to exactly one room for its lifetime.
type Client struct {
	Id   uuid.UUID
	room *Room
	conn *websocket.Conn

	// Buffered channel of outbound frames. The room writes here and
	// never touches the connection, so one slow peer cannot hold the
	// room's critical section.
	Send chan []byte
}

func newClient(room *Room, conn *websocket.Conn) *Client {
	return &Client{
		Id:   uuid.New(),
		room: room,
		conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
}

// readPump pumps frames from the websocket connection into the room.
// Deregistration runs in the defer, so an abrupt disconnect still
// triggers Leave exactly once.
func (c *Client) readPump() {
	defer func() {
		c.room.Leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.room.logger.Warn("Client", "Read error", map[string]interface{}{
					"client_id": c.Id.String(),
					"room":      c.room.Id,
					"error":     err.Error(),
				})
			}
			break
		}
		c.room.Receive(c, raw)
	}
}

// writePump pumps frames from the Send channel to the websocket
// connection and keeps the peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The room closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One websocket message per relay frame: clients parse
			// every message as a standalone JSON envelope.
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
