package application

import (
	"context"
	"errors"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/state"
	"lexa-chat/internal/usecase"

	"github.com/rs/zerolog"
)

// ClientFacade is what the view layer talks to: it reads the store and turns
// user intents into use case calls on the worker pool, so the view never
// blocks on the network.
type ClientFacade struct {
	store   *state.Store
	session usecase.SessionUseCase
	chats   usecase.ChatUseCase
	conv    usecase.ConversationUseCase
	pool    Submitter
	log     *zerolog.Logger
}

func NewClientFacade(
	store *state.Store,
	session usecase.SessionUseCase,
	chats usecase.ChatUseCase,
	conv usecase.ConversationUseCase,
	pool Submitter,
	logger *zerolog.Logger,
) *ClientFacade {
	l := logger.With().Str("component", "ClientFacade").Logger()
	return &ClientFacade{store: store, session: session, chats: chats, conv: conv, pool: pool, log: &l}
}

// Bootstrap restores persisted client state, validates the session and,
// when authenticated, loads the chat collection. It blocks.
func (f *ClientFacade) Bootstrap(ctx context.Context) {
	f.session.RestoreSession(ctx)
	f.conv.RestoreFromStorage(ctx)
	if f.session.ValidateSession(ctx) {
		_, _ = f.chats.FetchChats(ctx)
	}
}

func (f *ClientFacade) State() state.State { return f.store.State() }

func (f *ClientFacade) Subscribe() (<-chan struct{}, func()) { return f.store.Subscribe() }

func (f *ClientFacade) Login(creds adapter.Credentials) {
	f.submit("login", func(ctx context.Context) error {
		if _, err := f.session.Login(ctx, creds); err != nil {
			return err
		}
		_, err := f.chats.FetchChats(ctx)
		return err
	})
}

func (f *ClientFacade) Register(reg adapter.Registration) {
	f.submit("register", func(ctx context.Context) error {
		if _, err := f.session.Register(ctx, reg); err != nil {
			return err
		}
		_, err := f.chats.FetchChats(ctx)
		return err
	})
}

func (f *ClientFacade) Logout() {
	f.submit("logout", f.session.Logout)
}

func (f *ClientFacade) RefreshChats() {
	f.submit("fetch_chats", func(ctx context.Context) error {
		_, err := f.chats.FetchChats(ctx)
		return err
	})
}

func (f *ClientFacade) CreateChat(title string) {
	f.submit("create_chat", func(ctx context.Context) error {
		_, err := f.chats.CreateChat(ctx, title)
		return err
	})
}

func (f *ClientFacade) DeleteChat(chatID string) {
	f.submit("delete_chat", func(ctx context.Context) error {
		return f.chats.DeleteChat(ctx, chatID)
	})
}

func (f *ClientFacade) SelectChat(chatID string) {
	f.submit("select_chat", func(ctx context.Context) error {
		return f.conv.SelectChat(ctx, chatID)
	})
}

func (f *ClientFacade) Send(text string) {
	f.submit("send_message", func(ctx context.Context) error {
		err := f.conv.SendMessage(ctx, text)
		switch {
		case errors.Is(err, domain.ErrChannelUnavailable) && f.store.State().Channel.SendError == "":
			// a failed write already reports through SendError
			f.store.Dispatch(state.NoticeRaised{Message: "Not connected: message not sent"})
		case errors.Is(err, domain.ErrNoActiveChat):
			f.store.Dispatch(state.NoticeRaised{Message: "Select or create a chat first"})
		}
		return err
	})
}

func (f *ClientFacade) DismissNotice() { f.conv.DismissNotice() }

func (f *ClientFacade) submit(name string, task func(ctx context.Context) error) {
	if err := f.pool.Submit(name, task); err != nil {
		f.log.Warn().Err(err).Str("task", name).Msg("intent dropped")
		f.store.Dispatch(state.NoticeRaised{Message: "Busy, please try again"})
	}
}
