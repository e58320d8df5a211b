package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roomsync-be/internal/entity"
	"roomsync-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsAtomicUnderConcurrency(t *testing.T) {
	reg := newTestRegistry(memory.NewRoomStore(), time.Minute)

	const goroutines = 32
	rooms := make([]*Room, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms[i] = reg.GetOrCreate(context.Background(), "contended")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, rooms[0], rooms[i], "every caller must observe the same room instance")
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*entity.RoomRecord, error) {
	return nil, errors.New("store down")
}
func (failingStore) Set(context.Context, string, *entity.RoomRecord) error {
	return errors.New("store down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("store down") }
func (failingStore) Ping(context.Context) error           { return errors.New("store down") }

func TestStoreReadFailureMeansEmptyRoom(t *testing.T) {
	reg := NewRegistry(failingStore{}, nopPublisher{}, nopLogger{}, time.Minute)

	room := reg.GetOrCreate(context.Background(), "r1")
	require.NotNil(t, room)
	assert.Empty(t, room.History())
}

func TestStoreWriteFailureStillBroadcasts(t *testing.T) {
	reg := NewRegistry(failingStore{}, nopPublisher{}, nopLogger{}, time.Minute)
	room := reg.GetOrCreate(context.Background(), "r1")

	a := newTestClient(16)
	b := newTestClient(16)
	room.Join(a)
	room.Join(b)

	frame := chatFrame("still here")
	room.Receive(a, frame)

	assert.Equal(t, frame, recvFrame(t, a))
	assert.Equal(t, frame, recvFrame(t, b))
	assert.Equal(t, []string{"still here"}, room.History())
}

func TestIdleEvictionClearsPersistedState(t *testing.T) {
	store := memory.NewRoomStore()
	reg := newTestRegistry(store, 30*time.Millisecond)

	room := reg.GetOrCreate(context.Background(), "r2")
	c := newTestClient(16)
	room.Join(c)
	room.Receive(c, chatFrame("doomed"))
	room.Leave(c)

	assert.Eventually(t, func() bool {
		record, err := store.Get(context.Background(), "r2")
		return err == nil && record == nil
	}, time.Second, 5*time.Millisecond, "persisted record should be deleted after the grace period")

	// A later lookup starts from (now-empty) storage.
	fresh := reg.GetOrCreate(context.Background(), "r2")
	assert.NotSame(t, room, fresh)
	assert.Empty(t, fresh.History())
}

func TestRejoinWithinGracePeriodCancelsEviction(t *testing.T) {
	store := memory.NewRoomStore()
	reg := newTestRegistry(store, 50*time.Millisecond)

	room := reg.GetOrCreate(context.Background(), "r2")
	c := newTestClient(16)
	room.Join(c)
	room.Receive(c, chatFrame("keep me"))
	room.Leave(c)

	rejoined := newTestClient(16)
	room.Join(rejoined) // inside the grace period

	time.Sleep(150 * time.Millisecond)

	assert.Same(t, room, reg.GetOrCreate(context.Background(), "r2"))
	assert.Equal(t, []string{"keep me"}, room.History())

	record, err := store.Get(context.Background(), "r2")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, []string{"keep me"}, record.History)
}

func TestEvictionRechecksConnectionCount(t *testing.T) {
	store := memory.NewRoomStore()
	reg := newTestRegistry(store, time.Minute)

	room := reg.GetOrCreate(context.Background(), "r2")
	c := newTestClient(16)
	room.Join(c)
	room.Receive(c, chatFrame("survivor"))

	// A timer firing concurrently with a join must trust the live
	// count, not the cancellation race.
	reg.evict("r2")

	assert.Same(t, room, reg.GetOrCreate(context.Background(), "r2"))
	assert.Equal(t, []string{"survivor"}, room.History())

	record, err := store.Get(context.Background(), "r2")
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestResetBypassesGracePeriodAndConnections(t *testing.T) {
	store := memory.NewRoomStore()
	reg := newTestRegistry(store, time.Minute)

	room := reg.GetOrCreate(context.Background(), "r3")
	c := newTestClient(16)
	room.Join(c)
	room.Receive(c, chatFrame("wipe me"))

	require.NoError(t, reg.Reset(context.Background(), "r3"))

	record, err := store.Get(context.Background(), "r3")
	require.NoError(t, err)
	assert.Nil(t, record)

	// Connections stay attached, they just see an empty room now.
	assert.Equal(t, 1, room.ConnectionCount())
	assert.Empty(t, room.History())
	assert.Empty(t, room.Document())
}
