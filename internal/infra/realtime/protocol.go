// Package realtime is the gorilla/websocket adapter for the per-chat
// realtime channel.
package realtime

import (
	"encoding/json"
	"time"
)

const (
	TypeUserMessage = "user_message"
	TypeAIResponse  = "ai_response"
	TypeError       = "error"
)

// Envelope is the JSON frame exchanged with the server in both directions.
type Envelope struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId,omitempty"`
	Content string `json:"content,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	TS      int64  `json:"ts,omitempty"`
}

func newUserMessage(chatID, content string, now time.Time) Envelope {
	return Envelope{Type: TypeUserMessage, ChatID: chatID, Content: content, TS: now.UnixMilli()}
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
