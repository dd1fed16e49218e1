package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of the active conversation buffer. It only lives in memory.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessageID returns a ULID: millisecond time prefix plus a monotonic random
// suffix, so ids minted within the same millisecond still differ and sort.
func NewMessageID() string {
	return ulid.Make().String()
}

func NewUserMessage(text string) Message {
	return Message{ID: NewMessageID(), Text: text, Sender: SenderUser, CreatedAt: time.Now()}
}

func NewAIMessage(text string) Message {
	return Message{ID: NewMessageID(), Text: text, Sender: SenderAI, CreatedAt: time.Now()}
}

// SenderFromRole maps a server-side role onto the local sender. Only "user"
// is the user; every other role (assistant, system, ...) renders as the AI.
func SenderFromRole(role string) Sender {
	if role == "user" {
		return SenderUser
	}
	return SenderAI
}
