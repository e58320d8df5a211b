// Seeds chat history into a room's persisted record, so a freshly
// started server replays it to the first client that joins.
//
//	go run ./cmd/seedroom -room demo "hello" "welcome to demo"
package main

import (
	"context"
	"flag"
	"os"

	"roomsync-be/internal/entity"
	"roomsync-be/internal/repository/implementation"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
)

func main() {
	roomId := flag.String("room", "default", "room id to seed")
	redisURL := flag.String("redis", "redis://localhost:6379", "redis url")
	flag.Parse()

	messages := flag.Args()
	if len(messages) == 0 {
		color.Red("usage: seedroom [-room <id>] [-redis <url>] message [message...]")
		os.Exit(1)
	}

	opt, err := redis.ParseURL(*redisURL)
	if err != nil {
		color.Red("Invalid redis url: %v", err)
		os.Exit(1)
	}
	store := implementation.NewRedisRoomStore(redis.NewClient(opt))
	ctx := context.Background()

	color.Cyan("🚀 Seeding room %q", *roomId)

	record, err := store.Get(ctx, *roomId)
	if err != nil {
		color.Red("Failed to load existing record: %v", err)
		os.Exit(1)
	}
	if record == nil {
		record = &entity.RoomRecord{}
	}
	record.History = append(record.History, messages...)

	if err := store.Set(ctx, *roomId, record); err != nil {
		color.Red("Failed to write record: %v", err)
		os.Exit(1)
	}
	color.Green("Room %q now holds %d messages", *roomId, len(record.History))
}
