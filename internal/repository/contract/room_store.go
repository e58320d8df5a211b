package contract

import (
	"context"

	"roomsync-be/internal/entity"
)

// RoomStore is the durable key-value store behind the room registry.
// One record per room id, replaced wholesale on every Set.
type RoomStore interface {
	// Get returns the stored record for a room, or (nil, nil) when no
	// record exists.
	Get(ctx context.Context, roomId string) (*entity.RoomRecord, error)
	Set(ctx context.Context, roomId string, record *entity.RoomRecord) error
	Delete(ctx context.Context, roomId string) error
	Ping(ctx context.Context) error
}
