package memory

import (
	"context"

	"roomsync-be/internal/entity"
	"roomsync-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// RoomStore is the in-process fallback used when Redis is unreachable,
// and the store of choice in unit tests. Entries never expire on their
// own — room lifetime is the registry's job, not the cache's.
type RoomStore struct {
	cache *cache.Cache
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

var _ contract.RoomStore = (*RoomStore)(nil)

func (s *RoomStore) Get(_ context.Context, roomId string) (*entity.RoomRecord, error) {
	if x, found := s.cache.Get(roomId); found {
		record := x.(entity.RoomRecord)
		return &record, nil
	}
	return nil, nil
}

func (s *RoomStore) Set(_ context.Context, roomId string, record *entity.RoomRecord) error {
	// Copy: the room keeps appending to its history slice after the
	// write, and a stored alias would see those appends.
	stored := entity.RoomRecord{
		History:  append([]string(nil), record.History...),
		Document: append([]byte(nil), record.Document...),
	}
	s.cache.Set(roomId, stored, cache.NoExpiration)
	return nil
}

func (s *RoomStore) Delete(_ context.Context, roomId string) error {
	s.cache.Delete(roomId)
	return nil
}

func (s *RoomStore) Ping(_ context.Context) error {
	return nil
}
