package service

import (
	"context"
	"encoding/json"
	"sync"

	"roomsync-be/internal/dto"
	"roomsync-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	Counters() map[string]int64
}

// consumerService drains the room lifecycle topic into the isolated
// relay log and keeps per-event counters for the /api/stats endpoint.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger

	mu       sync.Mutex
	counters map[string]int64
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
		counters:  make(map[string]int64),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.RoomEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal room event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.mu.Lock()
	cs.counters[event.Type]++
	cs.mu.Unlock()

	cs.logger.Info("ConsumerService", "Room event", map[string]interface{}{
		"type":        event.Type,
		"room":        event.RoomId,
		"connections": event.Connections,
	})
	msg.Ack()
}

func (cs *consumerService) Counters() map[string]int64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	snapshot := make(map[string]int64, len(cs.counters))
	for k, v := range cs.counters {
		snapshot[k] = v
	}
	return snapshot
}
