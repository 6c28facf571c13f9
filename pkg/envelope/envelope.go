package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ActionStorage = "storage"
	ActionPing    = "ping"
	ActionPong    = "pong"
	ActionError   = "error"
)

// Envelope is what the hub writes to a browser socket and what the broker
// carries between portal instances. SID addresses one browser session; an
// empty SID means every session.
type Envelope struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Service   string          `json:"service"`
	SID       string          `json:"sid,omitempty"`
	ReplyTo   string          `json:"reply_to,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorPayload   `json:"error,omitempty"`
	Timestamp int64           `json:"ts"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StorageChange mirrors the browser's storage event: which key changed and why.
// An empty Key means both tokens were removed.
type StorageChange struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

func New(action, service string) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Action:    action,
		Service:   service,
		Timestamp: time.Now().UnixMilli(),
	}
}

func NewEvent(action, service string, data any) (Envelope, error) {
	e := New(action, service)
	raw, err := json.Marshal(data)
	if err != nil {
		return e, err
	}
	e.Data = raw
	return e, nil
}

// NewStorage addresses a storage change to one session.
func NewStorage(sid, reason string) Envelope {
	e, _ := NewEvent(ActionStorage, "session", StorageChange{Reason: reason})
	e.SID = sid
	return e
}

func NewReply(original Envelope, data any) (Envelope, error) {
	e := New(original.Action+".result", original.Service)
	e.ReplyTo = original.ID
	e.SID = original.SID
	raw, err := json.Marshal(data)
	if err != nil {
		return e, err
	}
	e.Data = raw
	return e, nil
}

func NewError(original Envelope, code int, message string) Envelope {
	e := New(original.Action+".error", original.Service)
	e.ReplyTo = original.ID
	e.SID = original.SID
	e.Error = &ErrorPayload{Code: code, Message: message}
	return e
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}

func ParseData[T any](e Envelope) (T, error) {
	var v T
	err := json.Unmarshal(e.Data, &v)
	return v, err
}
