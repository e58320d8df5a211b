package service

import (
	"encoding/json"

	"roomsync-be/internal/dto"
	"roomsync-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishRoomEvent(event dto.RoomEvent)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

// PublishRoomEvent is fire-and-forget: lifecycle events are
// operational telemetry, a failed publish must never fail the relay
// path that emitted it.
func (ps *publisherService) PublishRoomEvent(event dto.RoomEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		ps.logger.Error("PublisherService", "Failed to marshal room event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		ps.logger.Error("PublisherService", "Failed to publish room event", map[string]interface{}{
			"error": err.Error(),
			"type":  event.Type,
			"room":  event.RoomId,
		})
	}
}
