package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"roomsync-be/internal/entity"
	"roomsync-be/internal/repository/memory"
	"roomsync-be/internal/service"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestApp(store *memory.RoomStore) *fiber.App {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	consumer := service.NewConsumerService(pubSub, "t", nopLogger{})

	app := fiber.New()
	NewRoomController(store, consumer).RegisterRoutes(app.Group("/api"))
	return app
}

func TestCreateMintsA32CharRoomId(t *testing.T) {
	app := newTestApp(memory.NewRoomStore())

	resp, err := app.Test(httptest.NewRequest("POST", "/api/room/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			RoomId string `json:"room_id"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Len(t, body.Data.RoomId, 32)
	assert.NotContains(t, body.Data.RoomId, "-")
}

func TestShowReturnsPersistedSnapshot(t *testing.T) {
	store := memory.NewRoomStore()
	require.NoError(t, store.Set(context.Background(), "r1", &entity.RoomRecord{
		History:  []string{"hi"},
		Document: json.RawMessage(`{"nodes":[],"tags":[]}`),
	}))

	app := newTestApp(store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/room/v1/r1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			RoomId   string          `json:"room_id"`
			History  []string        `json:"history"`
			Document json.RawMessage `json:"document"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "r1", body.Data.RoomId)
	assert.Equal(t, []string{"hi"}, body.Data.History)
	assert.JSONEq(t, `{"nodes":[],"tags":[]}`, string(body.Data.Document))
}

func TestShowUnknownRoomIs404(t *testing.T) {
	app := newTestApp(memory.NewRoomStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/room/v1/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthReportsOkWithReachableStore(t *testing.T) {
	app := newTestApp(memory.NewRoomStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStatsStartsEmpty(t *testing.T) {
	app := newTestApp(memory.NewRoomStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
