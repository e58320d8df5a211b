package bootstrap

import (
	"context"
	"log"

	"roomsync-be/internal/config"
	"roomsync-be/internal/controller"
	"roomsync-be/internal/handler"
	"roomsync-be/internal/pkg/logger"
	"roomsync-be/internal/repository/contract"
	"roomsync-be/internal/repository/implementation"
	"roomsync-be/internal/repository/memory"
	"roomsync-be/internal/service"
	internalWS "roomsync-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// HTTP surface
	RoomController controller.IRoomController
	RelayHandler   *handler.RelayHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Relay core
	Registry *internalWS.Registry
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Persistent Store
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	var store contract.RoomStore
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Room state will not survive restarts", err)
		store = memory.NewRoomStore()
	} else {
		store = implementation.NewRedisRoomStore(rdb)
	}

	// 4. Relay Core
	// Relay traffic gets its own log file to keep the main log clean.
	relayLogger := logger.NewIsolatedLogger(cfg.App.RelayLogFilePath)

	publisherService := service.NewPublisherService(cfg.Room.EventTopic, pubSub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Room.EventTopic, relayLogger)

	registry := internalWS.NewRegistry(store, publisherService, relayLogger, cfg.Room.GracePeriod)

	// 5. HTTP Surface
	relayHandler := handler.NewRelayHandler(registry, relayLogger)
	roomController := controller.NewRoomController(store, consumerService)

	return &Container{
		RoomController:  roomController,
		RelayHandler:    relayHandler,
		ConsumerService: consumerService,
		Registry:        registry,
	}
}
