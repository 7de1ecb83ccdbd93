package models

// NotificationEvent is pushed over the optional websocket channel. It is a
// hint to re-poll, never the source of truth; every field it carries is also
// observable through the read endpoints.
type NotificationEvent struct {
	Type       string      `json:"type"`
	Wave       *Wave       `json:"wave,omitempty"`
	Message    *Message    `json:"message,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
}

const (
	EventWaveReceived       = "wave.received"
	EventMessageReceived    = "message.received"
	EventConnectionRequest  = "connection.requested"
	EventConnectionAccepted = "connection.accepted"
)
