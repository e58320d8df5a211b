package websocket

import (
	"context"
	"sync"
	"time"

	"roomsync-be/internal/dto"
	"roomsync-be/internal/pkg/logger"
	"roomsync-be/internal/repository/contract"
	"roomsync-be/internal/service"
)

// Registry is the process-wide room table. It owns the roomId -> Room
// mapping and the per-room idle eviction timers; rooms are created
// lazily on first reference and destroyed after staying empty for the
// grace period.
type Registry struct {
	store  contract.RoomStore
	logger logger.ILogger
	events service.IPublisherService
	grace  time.Duration

	mu     sync.Mutex
	rooms  map[string]*Room
	timers map[string]*time.Timer
}

func NewRegistry(store contract.RoomStore, events service.IPublisherService, log logger.ILogger, grace time.Duration) *Registry {
	return &Registry{
		store:  store,
		logger: log,
		events: events,
		grace:  grace,
		rooms:  make(map[string]*Room),
		timers: make(map[string]*time.Timer),
	}
}

// GetOrCreate returns the live room for an id, constructing at most
// one instance per id under concurrent first access. A new room is
// seeded from the persisted record; a read failure means the room
// simply starts empty.
func (reg *Registry) GetOrCreate(ctx context.Context, roomId string) *Room {
	reg.mu.Lock()
	if room, ok := reg.rooms[roomId]; ok {
		reg.mu.Unlock()
		return room
	}

	record, err := reg.store.Get(ctx, roomId)
	if err != nil {
		reg.logger.Warn("Registry", "Failed to load room record, starting empty", map[string]interface{}{
			"room":  roomId,
			"error": err.Error(),
		})
		record = nil
	}
	room := newRoom(roomId, record, reg)
	reg.rooms[roomId] = room
	reg.mu.Unlock()

	reg.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventRoomCreated, RoomId: roomId})
	reg.logger.Info("Registry", "Room created", map[string]interface{}{
		"room":           roomId,
		"seeded_history": len(room.History()),
	})
	return room
}

// onConnect cancels a pending eviction, if any. If eviction already
// removed the room between lookup and join, the room re-registers
// itself so later lookups can't create a second instance for the id.
func (reg *Registry) onConnect(room *Room) {
	reg.mu.Lock()
	if t, ok := reg.timers[room.Id]; ok {
		t.Stop()
		delete(reg.timers, room.Id)
	}
	if _, ok := reg.rooms[room.Id]; !ok {
		reg.rooms[room.Id] = room
	}
	reg.mu.Unlock()
}

// onEmpty (re)arms the eviction timer for a room whose connection
// count just hit zero.
func (reg *Registry) onEmpty(room *Room) {
	reg.mu.Lock()
	if t, ok := reg.timers[room.Id]; ok {
		t.Stop()
	}
	reg.timers[room.Id] = time.AfterFunc(reg.grace, func() {
		reg.evict(room.Id)
	})
	reg.mu.Unlock()

	reg.logger.Info("Registry", "Room empty, eviction scheduled", map[string]interface{}{
		"room":  room.Id,
		"grace": reg.grace.String(),
	})
}

// evict runs when the grace timer fires. The zero-connection check
// here is authoritative: a join racing the firing timer wins because
// the count is re-read under the registry lock, not inferred from
// whether Stop() landed in time.
func (reg *Registry) evict(roomId string) {
	reg.mu.Lock()
	delete(reg.timers, roomId)
	room, ok := reg.rooms[roomId]
	if !ok {
		reg.mu.Unlock()
		return
	}
	if room.ConnectionCount() > 0 {
		reg.mu.Unlock()
		return
	}
	delete(reg.rooms, roomId)
	reg.mu.Unlock()

	room.clear()
	if err := reg.store.Delete(context.Background(), roomId); err != nil {
		reg.logger.Error("Registry", "Failed to delete room record on eviction", map[string]interface{}{
			"room":  roomId,
			"error": err.Error(),
		})
	}
	reg.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventRoomEvicted, RoomId: roomId})
	reg.logger.Info("Registry", "Room evicted due to inactivity", map[string]interface{}{"room": roomId})
}

// Reset force-clears a room's in-memory and persisted state, ignoring
// connection count and any pending grace period. Attached connections
// stay open; they just see an empty room from here on.
func (reg *Registry) Reset(ctx context.Context, roomId string) error {
	reg.mu.Lock()
	room := reg.rooms[roomId]
	reg.mu.Unlock()

	if room != nil {
		room.clear()
	}
	if err := reg.store.Delete(ctx, roomId); err != nil {
		reg.logger.Error("Registry", "Failed to delete room record on reset", map[string]interface{}{
			"room":  roomId,
			"error": err.Error(),
		})
		return err
	}

	reg.events.PublishRoomEvent(dto.RoomEvent{Type: dto.EventRoomReset, RoomId: roomId})
	reg.logger.Info("Registry", "Room reset", map[string]interface{}{"room": roomId})
	return nil
}
