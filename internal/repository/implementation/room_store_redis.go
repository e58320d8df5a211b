package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roomsync-be/internal/entity"
	"roomsync-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const roomKeyPrefix = "room:"

type redisRoomStore struct {
	rdb *redis.Client
}

func NewRedisRoomStore(rdb *redis.Client) contract.RoomStore {
	return &redisRoomStore{rdb: rdb}
}

func roomKey(roomId string) string {
	return roomKeyPrefix + roomId
}

func (s *redisRoomStore) Get(ctx context.Context, roomId string) (*entity.RoomRecord, error) {
	raw, err := s.rdb.Get(ctx, roomKey(roomId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", roomId, err)
	}

	var record entity.RoomRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode room record %s: %w", roomId, err)
	}
	return &record, nil
}

func (s *redisRoomStore) Set(ctx context.Context, roomId string, record *entity.RoomRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode room record %s: %w", roomId, err)
	}
	// No TTL: lifetime is owned by the registry's idle eviction.
	if err := s.rdb.Set(ctx, roomKey(roomId), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", roomId, err)
	}
	return nil
}

func (s *redisRoomStore) Delete(ctx context.Context, roomId string) error {
	if err := s.rdb.Del(ctx, roomKey(roomId)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", roomId, err)
	}
	return nil
}

func (s *redisRoomStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
