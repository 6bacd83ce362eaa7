// Package events contains the event contracts pushed to dashboard pages over WebSocket.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConnect is sent once to a client right after it registers
	MessageTypeConnect MessageType = "connection"

	// MessageTypeDatasetChanged asks pages to recompute their views
	MessageTypeDatasetChanged MessageType = "dataset:changed"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetChanged tells pages that the dataset file changed on disk
type DatasetChanged struct {
	Path      string `json:"path"`
	Operation string `json:"operation"`
}

// ConnectionInfo is sent to a client right after it connects
type ConnectionInfo struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// NewMessage builds a message of the given type stamped with the current time
func NewMessage(msgType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		Data: data,
	}
}
