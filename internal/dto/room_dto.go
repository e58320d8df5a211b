package dto

import "encoding/json"

type CreateRoomResponse struct {
	RoomId string `json:"room_id"`
}

type RoomSnapshotResponse struct {
	RoomId   string          `json:"room_id"`
	History  []string        `json:"history"`
	Document json.RawMessage `json:"document,omitempty"`
}

// RoomEvent is the payload published on the lifecycle topic.
type RoomEvent struct {
	Type        string `json:"type"`
	RoomId      string `json:"room_id"`
	Connections int    `json:"connections"`
}

const (
	EventRoomCreated  = "room_created"
	EventClientJoined = "client_joined"
	EventClientLeft   = "client_left"
	EventRoomEvicted  = "room_evicted"
	EventRoomReset    = "room_reset"
)
