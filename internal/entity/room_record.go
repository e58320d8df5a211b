package entity

import "encoding/json"

// RoomRecord is the full persisted state of one room. The store keeps
// exactly one record per room id and every write replaces the whole
// record — there are no partial updates and no cross-room transactions.
//
// Document stays a raw JSON value: the relay forwards and persists
// object payloads verbatim, so decoding them into a struct here would
// silently drop fields the clients agreed on.
type RoomRecord struct {
	History  []string        `json:"history"`
	Document json.RawMessage `json:"document,omitempty"`
}
