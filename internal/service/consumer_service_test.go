package service

import (
	"context"
	"testing"
	"time"

	"roomsync-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestLifecycleEventsFlowFromPublisherToCounters(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	const topic = "ROOM_LIFECYCLE_TEST"

	consumer := NewConsumerService(pubSub, topic, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(topic, pubSub, nopLogger{})
	publisher.PublishRoomEvent(dto.RoomEvent{Type: dto.EventRoomCreated, RoomId: "r1"})
	publisher.PublishRoomEvent(dto.RoomEvent{Type: dto.EventClientJoined, RoomId: "r1", Connections: 1})
	publisher.PublishRoomEvent(dto.RoomEvent{Type: dto.EventClientJoined, RoomId: "r1", Connections: 2})

	assert.Eventually(t, func() bool {
		counters := consumer.Counters()
		return counters[dto.EventRoomCreated] == 1 && counters[dto.EventClientJoined] == 2
	}, time.Second, 5*time.Millisecond)
}

func TestCountersReturnsASnapshot(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	consumer := NewConsumerService(pubSub, "t", nopLogger{})

	snapshot := consumer.Counters()
	snapshot["tampered"] = 99

	assert.Empty(t, consumer.Counters())
}
