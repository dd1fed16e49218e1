// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/infra/logging"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// FetchChats always returns a non-nil list; on failure it is empty and
	// the error is returned for the caller's information.
	FetchChats(ctx context.Context) ([]model.Chat, error)
	CreateChat(ctx context.Context, title string) (*model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
}

type chatUC struct {
	fx  *Effects
	api adapter.ChatAPI
	log *zerolog.Logger
}

func NewChatUseCase(fx *Effects, api adapter.ChatAPI, logger *zerolog.Logger) *chatUC {
	return &chatUC{fx: fx, api: api, log: logger}
}

func (c *chatUC) FetchChats(ctx context.Context) ([]model.Chat, error) {
	defer logging.TraceDuration(c.log, "ChatUC.FetchChats")()

	c.fx.store.Dispatch(state.ChatsLoadStarted{})
	chats, err := c.api.ListChats(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to fetch chats")
		c.fx.Dispatch(ctx, state.ChatsLoadFailed{})
		return []model.Chat{}, err
	}
	if chats == nil {
		chats = []model.Chat{}
	}
	_, next := c.fx.Dispatch(ctx, state.ChatsLoaded{Chats: chats})
	c.log.Debug().Int("count", len(next.Chats.Items)).Msg("chats loaded")
	return next.Chats.Items, nil
}

func (c *chatUC) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	defer logging.TraceDuration(c.log, "ChatUC.CreateChat")()

	t, err := model.NormalizeTitle(title)
	if err != nil {
		c.fx.raise("Chat title cannot be empty", err)
		return nil, err
	}
	chat, err := c.api.CreateChat(ctx, t)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to create chat")
		c.fx.raise("Could not create chat", err)
		return nil, err
	}
	c.fx.Dispatch(ctx, state.ChatCreated{Chat: *chat})
	logging.With(logging.WithChatID(ctx, chat.ID), c.log).Info().Msg("chat created")
	return chat, nil
}

func (c *chatUC) DeleteChat(ctx context.Context, chatID string) error {
	defer logging.TraceDuration(c.log, "ChatUC.DeleteChat")()

	if err := c.api.DeleteChat(ctx, chatID); err != nil {
		c.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to delete chat")
		c.fx.raise("Could not delete chat", err)
		return err
	}
	c.fx.Dispatch(ctx, state.ChatDeleted{ChatID: chatID})
	logging.With(logging.WithChatID(ctx, chatID), c.log).Info().Msg("chat deleted")
	return nil
}
