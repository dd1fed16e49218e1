package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
)

// ListChats tolerates a missing or non-array "chats" field and returns an
// empty slice for it. Entries that cannot be decoded or carry no id are
// skipped one by one.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	var env struct {
		Chats json.RawMessage `json:"chats"`
	}
	if err := c.do(ctx, "list_chats", http.MethodGet, "/chat", nil, &env); err != nil {
		return nil, err
	}
	chats := []model.Chat{}
	if len(env.Chats) == 0 {
		return chats, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(env.Chats, &raw); err != nil {
		c.log.Warn().Err(err).Msg("chats field is not a list; treating as empty")
		return chats, nil
	}
	for i, entry := range raw {
		var w wireChat
		if err := json.Unmarshal(entry, &w); err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed chat entry")
			continue
		}
		if w.ID == "" {
			c.log.Warn().Int("index", i).Msg("skipping chat entry without id")
			continue
		}
		chats = append(chats, w.chat())
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	var env struct {
		Chat *wireChat `json:"chat"`
	}
	body := map[string]string{"title": title}
	if err := c.do(ctx, "create_chat", http.MethodPost, "/chat", body, &env); err != nil {
		return nil, err
	}
	if env.Chat == nil || env.Chat.ID == "" {
		return nil, fmt.Errorf("create_chat: response carried no chat")
	}
	chat := env.Chat.chat()
	return &chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	var env struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "delete_chat", http.MethodDelete, "/chat/"+url.PathEscape(chatID), nil, &env); err != nil {
		return err
	}
	c.log.Debug().Str("chat_id", chatID).Str("message", env.Message).Msg("chat deleted")
	return nil
}

func (c *Client) ListMessages(ctx context.Context, chatID string) ([]adapter.HistoryRecord, error) {
	var env struct {
		Messages []wireRecord `json:"messages"`
	}
	if err := c.do(ctx, "list_messages", http.MethodGet, "/chat/"+url.PathEscape(chatID), nil, &env); err != nil {
		return nil, err
	}
	out := make([]adapter.HistoryRecord, 0, len(env.Messages))
	for _, w := range env.Messages {
		out = append(out, w.record())
	}
	return out, nil
}

// SendMessage posts content to the chat over HTTP and returns the assistant
// reply. An empty reply is not an error.
func (c *Client) SendMessage(ctx context.Context, chatID, content string) (string, error) {
	var env struct {
		Response string `json:"response"`
	}
	body := map[string]string{"message": content}
	if err := c.do(ctx, "send_message", http.MethodPost, "/chat/"+url.PathEscape(chatID)+"/message", body, &env); err != nil {
		return "", err
	}
	return env.Response, nil
}
