package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"roomsync-be/internal/dto"
	"roomsync-be/internal/entity"
	"roomsync-be/internal/pkg/logger"
	"roomsync-be/internal/repository/contract"
	"roomsync-be/internal/service"
)

// Room owns the connection set, the append-only chat history and the
// shared document snapshot for one room id. All mutation goes through
// the room's mutex; no other component touches this state directly.
//
// Lock discipline: registry methods are only called after r.mu is
// released. The registry may take r.mu (via ConnectionCount / clear)
// while holding its own lock, never the other way around.
type Room struct {
	Id string

	registry *Registry
	store    contract.RoomStore
	logger   logger.ILogger
	events   service.IPublisherService

	mu       sync.Mutex
	conns    map[*Client]struct{}
	history  []string
	document json.RawMessage
}

func newRoom(id string, record *entity.RoomRecord, registry *Registry) *Room {
	room := &Room{
		Id:       id,
		registry: registry,
		store:    registry.store,
		logger:   registry.logger,
		events:   registry.events,
		conns:    make(map[*Client]struct{}),
	}
	if record != nil {
		room.history = append(room.history, record.History...)
		room.document = append(json.RawMessage(nil), record.Document...)
	}
	return room
}

// Join replays the buffered history to the connection, one frame per
// stored message, then attaches it for future broadcasts. The replay
// happens under the lock, so no live broadcast can interleave with it.
//
// The document is NOT replayed here: a client joining between object
// updates holds no document until the next broadcast arrives. Known
// latency window inherited from the reference behavior.
func (r *Room) Join(c *Client) {
	r.mu.Lock()
	for _, text := range r.history {
		frame, err := dto.NewChatFrame(text)
		if err != nil {
			continue
		}
		if !r.trySend(c, frame) {
			r.logger.Warn("Room", "Replay overflowed client buffer, dropping frame", map[string]interface{}{
				"room":      r.Id,
				"client_id": c.Id.String(),
			})
		}
	}
	r.conns[c] = struct{}{}
	n := len(r.conns)
	r.mu.Unlock()

	r.registry.onConnect(r)
	r.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventClientJoined, RoomId: r.Id, Connections: n})
	r.logger.Info("Room", "Client joined", map[string]interface{}{
		"room":        r.Id,
		"client_id":   c.Id.String(),
		"connections": n,
	})
}

// Leave detaches the connection. Safe to call more than once; only the
// call that actually removes the client closes its Send channel.
func (r *Room) Leave(c *Client) {
	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c)
	close(c.Send)
	n := len(r.conns)
	r.mu.Unlock()

	r.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventClientLeft, RoomId: r.Id, Connections: n})
	r.logger.Info("Room", "Client left", map[string]interface{}{
		"room":        r.Id,
		"client_id":   c.Id.String(),
		"connections": n,
	})
	if n == 0 {
		r.registry.onEmpty(r)
	}
}

// Receive applies one inbound frame: persist, then fan out the raw
// bytes to every connection in the room, sender included.
func (r *Room) Receive(c *Client, raw []byte) {
	env, err := dto.ParseEnvelope(raw)
	if err != nil {
		r.logger.Warn("Room", "Dropping malformed frame", map[string]interface{}{
			"room":      r.Id,
			"client_id": c.Id.String(),
			"error":     err.Error(),
		})
		return
	}

	switch env.Type {
	case dto.MessageTypeChat:
		text, err := env.ChatText()
		if err != nil {
			r.logger.Warn("Room", "Dropping malformed chat frame", map[string]interface{}{
				"room":  r.Id,
				"error": err.Error(),
			})
			return
		}
		r.mu.Lock()
		r.history = append(r.history, text)
		r.persistLocked()
		dropped := r.broadcastLocked(raw)
		empty := len(r.conns) == 0
		r.mu.Unlock()
		r.afterBroadcast(dropped, empty)

	case dto.MessageTypeObject:
		r.mu.Lock()
		r.document = append(json.RawMessage(nil), env.Data...)
		r.persistLocked()
		dropped := r.broadcastLocked(raw)
		empty := len(r.conns) == 0
		r.mu.Unlock()
		r.afterBroadcast(dropped, empty)

	default:
		r.logger.Warn("Room", "Dropping frame with unrecognized type", map[string]interface{}{
			"room": r.Id,
			"type": env.Type,
		})
	}
}

// persistLocked writes the full record for this room. A store failure
// is logged and swallowed: broadcast must proceed so a store fault
// cannot freeze live collaboration, at the cost of in-memory and
// durable state diverging until the next successful write.
func (r *Room) persistLocked() {
	record := &entity.RoomRecord{
		History:  r.history,
		Document: r.document,
	}
	if err := r.store.Set(context.Background(), r.Id, record); err != nil {
		r.logger.Error("Room", "Failed to persist room record", map[string]interface{}{
			"room":  r.Id,
			"error": err.Error(),
		})
	}
}

// broadcastLocked fans a frame out to every attached client. A client
// whose buffer is full is removed and its channel closed — dropping
// the laggard instead of stalling everyone else. Returns the removed
// clients.
func (r *Room) broadcastLocked(frame []byte) []*Client {
	var dropped []*Client
	for c := range r.conns {
		if !r.trySend(c, frame) {
			delete(r.conns, c)
			close(c.Send)
			dropped = append(dropped, c)
		}
	}
	return dropped
}

func (r *Room) trySend(c *Client, frame []byte) bool {
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

func (r *Room) afterBroadcast(dropped []*Client, empty bool) {
	for _, c := range dropped {
		r.logger.Warn("Room", "Client send buffer full, disconnecting", map[string]interface{}{
			"room":      r.Id,
			"client_id": c.Id.String(),
		})
		r.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventClientLeft, RoomId: r.Id})
	}
	if empty && len(dropped) > 0 {
		r.registry.onEmpty(r)
	}
}

func (r *Room) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// History returns a copy of the buffered chat history.
func (r *Room) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// Document returns a copy of the current document snapshot, nil when
// no object update has been applied or loaded.
func (r *Room) Document() json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(json.RawMessage(nil), r.document...)
}

// clear wipes the in-memory state. Connections stay attached; only
// history and document go.
func (r *Room) clear() {
	r.mu.Lock()
	r.history = nil
	r.document = nil
	r.mu.Unlock()
}
