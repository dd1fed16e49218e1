package adapter

import (
	"context"

	"lexa-chat/internal/domain/model"
)

// Reply is the single inbound event kind: an assistant answer for a chat.
type Reply struct {
	ChatID  string
	Content string
}

// ChannelHandler receives events from an open channel. Calls may come from
// the channel's own goroutine.
type ChannelHandler interface {
	OnReply(reply Reply)
	OnPhase(chatID string, phase model.ChannelPhase, err error)
}

// RealtimeChannel is one open transport connection scoped to a chat.
type RealtimeChannel interface {
	ChatID() string
	Send(ctx context.Context, content string) error
	// Close tears the channel down and returns once its goroutines exited.
	Close() error
}

// RealtimeDialer opens channels. Dial returns once the connection is
// established (Connected) or failed.
type RealtimeDialer interface {
	Dial(ctx context.Context, chatID string, h ChannelHandler) (RealtimeChannel, error)
}
