package controller

import (
	"strings"

	"roomsync-be/internal/dto"
	"roomsync-be/internal/pkg/serverutils"
	"roomsync-be/internal/repository/contract"
	"roomsync-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type roomController struct {
	store    contract.RoomStore
	consumer service.IConsumerService
}

func NewRoomController(store contract.RoomStore, consumer service.IConsumerService) IRoomController {
	return &roomController{store: store, consumer: consumer}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/room/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Show)

	r.Get("/stats", c.Stats)
	r.Get("/health", c.Health)
}

// Create mints a fresh room identifier. Same shape the web client
// generates locally: 32 hex characters.
func (c *roomController) Create(ctx *fiber.Ctx) error {
	roomId := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ctx.JSON(serverutils.SuccessResponse("Success create room", dto.CreateRoomResponse{RoomId: roomId}))
}

// Show reads the persisted snapshot for a room. It goes through the
// store, not the live room, so it reflects the last durable write.
func (c *roomController) Show(ctx *fiber.Ctx) error {
	roomId := ctx.Params("id")

	record, err := c.store.Get(ctx.Context(), roomId)
	if err != nil {
		return err
	}
	if record == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse("Room not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get room snapshot", dto.RoomSnapshotResponse{
		RoomId:   roomId,
		History:  record.History,
		Document: record.Document,
	}))
}

func (c *roomController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get relay stats", c.consumer.Counters()))
}

func (c *roomController) Health(ctx *fiber.Ctx) error {
	if err := c.store.Ping(ctx.Context()); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse("Store unreachable"))
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}
