package repository

import "context"

// ActiveChatRepository persists the selected chat id across restarts.
// LoadActiveChat returns domain.ErrNotFound when nothing is stored.
type ActiveChatRepository interface {
	LoadActiveChat(ctx context.Context) (string, error)
	SaveActiveChat(ctx context.Context, chatID string) error
	ClearActiveChat(ctx context.Context) error
}

// SessionTokenRepository persists the session cookie value so a restarted
// client can revalidate its session. LoadSessionToken returns
// domain.ErrNotFound when nothing is stored.
type SessionTokenRepository interface {
	LoadSessionToken(ctx context.Context) (string, error)
	SaveSessionToken(ctx context.Context, token string) error
	ClearSessionToken(ctx context.Context) error
}

// ClientStateRepository is what storage drivers implement.
type ClientStateRepository interface {
	ActiveChatRepository
	SessionTokenRepository
	Close() error
}
