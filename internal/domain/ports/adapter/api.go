package adapter

import (
	"context"
	"time"

	"lexa-chat/internal/domain/model"
)

// Credentials are submitted by the login screen.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is submitted by the sign-up screen.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// HistoryRecord is a message as stored by the server.
type HistoryRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatAPI is the port for the remote HTTP API. Implementations carry the
// session cookie between calls.
type ChatAPI interface {
	ValidateSession(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, creds Credentials) (*model.User, error)
	Register(ctx context.Context, reg Registration) (*model.User, error)
	Logout(ctx context.Context) error

	ListChats(ctx context.Context) ([]model.Chat, error)
	CreateChat(ctx context.Context, title string) (*model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	ListMessages(ctx context.Context, chatID string) ([]HistoryRecord, error)
	// SendMessage is the request/response send path used when no realtime
	// channel is connected. It returns the assistant reply.
	SendMessage(ctx context.Context, chatID, content string) (string, error)

	// SessionToken exposes the current session cookie value ("" when none).
	SessionToken() string
	// SetSessionToken seeds the session cookie, e.g. from persisted client state.
	SetSessionToken(token string)
}
