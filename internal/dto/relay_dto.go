package dto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire envelope, symmetric client<->server:
//
//	{ "type": "chat",   "data": "<free-form string>" }
//	{ "type": "object", "data": { "nodes": [...], "tags": [...] } }
const (
	MessageTypeChat   = "chat"
	MessageTypeObject = "object"
)

var ErrMalformedFrame = errors.New("malformed frame")

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEnvelope decodes an inbound frame. A frame that is not a JSON
// object with a non-empty "type" is malformed; an unknown type is NOT —
// the caller decides what to do with types it does not handle.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return &env, nil
}

// ChatText extracts the string payload of a chat envelope.
func (e *Envelope) ChatText() (string, error) {
	var text string
	if err := json.Unmarshal(e.Data, &text); err != nil {
		return "", fmt.Errorf("%w: chat data is not a string: %v", ErrMalformedFrame, err)
	}
	return text, nil
}

// NewChatFrame encodes a chat envelope, used when replaying stored
// history to a freshly joined connection. Live messages are relayed as
// the raw bytes the sender produced, so payloads never get re-encoded.
func NewChatFrame(text string) ([]byte, error) {
	data, err := json.Marshal(text)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: MessageTypeChat, Data: data})
}

// SyncedDocument is the shared structure collaboratively edited by all
// clients in a room. It is replaced wholesale on every object update;
// the relay never merges, diffs, or validates it. Node/tag references
// are weak id strings — dangling references are tolerated by design.
type SyncedDocument struct {
	Nodes []Node `json:"nodes"`
	Tags  []Tag  `json:"tags"`
}

type Node struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ParentNodes []string `json:"parent_nodes"`
	ChildNodes  []string `json:"child_nodes"`
}

type Tag struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
