package handler

import (
	"roomsync-be/internal/pkg/logger"
	"roomsync-be/internal/pkg/serverutils"
	internalWS "roomsync-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RelayHandler struct {
	registry *internalWS.Registry
	logger   logger.ILogger
}

func NewRelayHandler(registry *internalWS.Registry, log logger.ILogger) *RelayHandler {
	return &RelayHandler{
		registry: registry,
		logger:   log,
	}
}

func (h *RelayHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
	r.Post("/reset", h.Reset)
}

// ServeWs handles websocket upgrade requests. The room query parameter
// picks the room, defaulting to "default"; the connection stays bound
// to that room for its whole lifetime.
func (h *RelayHandler) ServeWs(c *fiber.Ctx) error {
	roomId := c.Query("room", "default")

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RelayHandler", "Starting WebSocket session", map[string]interface{}{"room": roomId})
			internalWS.ServeWs(h.registry, conn, roomId)
			h.logger.Info("RelayHandler", "WebSocket session ended", map[string]interface{}{"room": roomId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Reset forcibly clears a room's persisted and in-memory state,
// bypassing the idle grace period. Operational cleanup only.
func (h *RelayHandler) Reset(c *fiber.Ctx) error {
	roomId := c.Query("room", "default")

	if err := h.registry.Reset(c.Context(), roomId); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse("Failed to reset room"))
	}
	return c.JSON(serverutils.SuccessResponse("Room reset successfully", fiber.Map{"room_id": roomId}))
}
