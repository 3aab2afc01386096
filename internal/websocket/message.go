package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeSearch        MessageType = "search"
	TypeResults       MessageType = "results"
	TypeSessionClosed MessageType = "session_closed"
	TypeError         MessageType = "error"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SearchPayload is one keystroke on a list screen. A client-side seq may be
// present; staleness is decided by the server's own sequence. Query holds the
// screen's current filters as a URL query string.
type SearchPayload struct {
	Screen string `json:"screen"`
	Term   string `json:"term"`
	Query  string `json:"query,omitempty"`
	Seq    uint64 `json:"seq,omitempty"`
}

type ResultsPayload struct {
	Screen   string      `json:"screen"`
	Seq      uint64      `json:"seq"`
	Rows     interface{} `json:"rows,omitempty"`
	Error    string      `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

type SessionClosedPayload struct {
	Redirect string `json:"redirect"`
}

// SessionClosedMessage tells every tab of a session that it has logged out.
func SessionClosedMessage(redirect string) *Message {
	return mustMessage(TypeSessionClosed, SessionClosedPayload{Redirect: redirect})
}
