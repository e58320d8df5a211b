package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded connection to its room and pumps frames
// until the peer goes away. Runs on the upgrade handler's goroutine.
func ServeWs(registry *Registry, conn *websocket.Conn, roomId string) {
	room := registry.GetOrCreate(context.Background(), roomId)
	client := newClient(room, conn)

	go client.writePump()
	room.Join(client)
	client.readPump()
}
