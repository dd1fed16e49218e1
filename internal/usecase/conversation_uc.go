package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/infra/logging"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

type ConversationUseCase interface {
	SelectChat(ctx context.Context, chatID string) error
	// RestoreFromStorage reads the persisted active chat as a tentative id;
	// it is confirmed or discarded once the chat collection loads.
	RestoreFromStorage(ctx context.Context)
	AppendUserMessage(text string) model.Message
	AppendAIMessage(text string) model.Message
	Clear(ctx context.Context)
	// SendMessage appends text optimistically and emits it on the realtime
	// channel, or over HTTP when no channel is connected for the chat. Only
	// one send may be in flight.
	SendMessage(ctx context.Context, text string) error
	DismissNotice()
}

// MessageSender emits a user message for a chat on the realtime channel.
type MessageSender interface {
	Send(ctx context.Context, chatID, content string) error
}

type conversationUC struct {
	fx           *Effects
	active       repository.ActiveChatRepository
	sender       MessageSender
	replyTimeout time.Duration
	afterFunc    func(time.Duration, func())
	log          *zerolog.Logger
}

func NewConversationUseCase(fx *Effects, active repository.ActiveChatRepository, sender MessageSender, replyTimeout time.Duration, logger *zerolog.Logger) *conversationUC {
	return &conversationUC{
		fx:           fx,
		active:       active,
		sender:       sender,
		replyTimeout: replyTimeout,
		afterFunc:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		log:          logger,
	}
}

func (c *conversationUC) SelectChat(ctx context.Context, chatID string) error {
	defer logging.TraceDuration(c.log, "ConversationUC.SelectChat")()

	if chatID == "" {
		c.Clear(ctx)
		return nil
	}
	st := c.fx.store.State()
	if st.Chats.Loaded && model.IndexOfChat(st.Chats.Items, chatID) < 0 {
		return domain.ErrNotFound
	}
	c.fx.Dispatch(ctx, state.ChatSelected{ChatID: chatID})
	return nil
}

func (c *conversationUC) RestoreFromStorage(ctx context.Context) {
	id, err := c.active.LoadActiveChat(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.fx.remember("")
		return
	case err != nil:
		c.log.Warn().Err(err).Msg("failed to read persisted active chat")
		return
	}
	c.fx.remember(id)
	c.log.Debug().Str("chat_id", id).Msg("restored tentative active chat")
	c.fx.Dispatch(ctx, state.TentativeRestored{ChatID: id})
	// against an already-loaded collection the id may have been discarded
	c.fx.persist(ctx)
}

// sendStarted and replyReceived mint every user and assistant message
// appended to the buffer, whichever path delivers them.
func sendStarted(chatID, text string) state.SendStarted {
	return state.SendStarted{ChatID: chatID, Message: model.NewUserMessage(text)}
}

func replyReceived(chatID, text string) state.ReplyReceived {
	return state.ReplyReceived{ChatID: chatID, Message: model.NewAIMessage(text)}
}

// AppendUserMessage appends without sending.
func (c *conversationUC) AppendUserMessage(text string) model.Message {
	msg := model.NewUserMessage(text)
	c.fx.store.Dispatch(state.UserMessageAppended{Message: msg})
	return msg
}

// AppendAIMessage appends a reply to the active chat and clears the sending
// flag, exactly as a reply from the realtime channel does.
func (c *conversationUC) AppendAIMessage(text string) model.Message {
	a := replyReceived(c.fx.store.State().Active.ChatID, text)
	c.fx.store.Dispatch(a)
	return a.Message
}

func (c *conversationUC) Clear(ctx context.Context) {
	c.fx.Dispatch(ctx, state.ActiveCleared{})
}

func (c *conversationUC) SendMessage(ctx context.Context, text string) error {
	defer logging.TraceDuration(c.log, "ConversationUC.SendMessage")()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrInvalidArgument
	}
	st := c.fx.store.State()
	chatID := st.Active.ChatID
	switch {
	case !st.HasActiveChat():
		return domain.ErrNoActiveChat
	case st.Channel.Sending:
		return domain.ErrSendInFlight
	}
	live := st.Channel.ChatID == chatID && st.Channel.Phase == model.ChannelConnected

	prev, next := c.fx.store.Dispatch(sendStarted(chatID, text))
	if next.Channel.SendSeq == prev.Channel.SendSeq {
		// lost a race with another send or a chat switch
		if prev.Channel.Sending {
			return domain.ErrSendInFlight
		}
		return domain.ErrNoActiveChat
	}
	seq := next.Channel.SendSeq

	if !live {
		return c.sendOverHTTP(ctx, chatID, text, seq)
	}

	if err := c.sender.Send(ctx, chatID, text); err != nil {
		c.log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to send message")
		c.fx.store.Dispatch(state.SendFailed{ChatID: chatID, Seq: seq, Reason: "message not sent"})
		return err
	}

	if c.replyTimeout > 0 {
		c.afterFunc(c.replyTimeout, func() {
			_, after := c.fx.store.Dispatch(state.SendTimedOut{ChatID: chatID, Seq: seq})
			if after.Channel.SendError == state.SendTimeoutReason && after.Channel.SendSeq == seq {
				c.log.Warn().Str("chat_id", chatID).Dur("timeout", c.replyTimeout).Msg("no reply received")
			}
		})
	}
	return nil
}

// sendOverHTTP posts the message through the API and appends the reply it
// returns.
func (c *conversationUC) sendOverHTTP(ctx context.Context, chatID, text string, seq uint64) error {
	c.log.Debug().Str("chat_id", chatID).Msg("no live channel; sending over HTTP")
	reply, err := c.fx.api.SendMessage(ctx, chatID, text)
	if err != nil {
		c.log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to send message over HTTP")
		c.fx.store.Dispatch(state.SendFailed{ChatID: chatID, Seq: seq, Reason: "message not sent: " + errorText(err)})
		return err
	}
	if reply == "" {
		c.fx.store.Dispatch(state.SendCompleted{ChatID: chatID, Seq: seq})
		return nil
	}
	c.fx.store.Dispatch(replyReceived(chatID, reply))
	return nil
}

func (c *conversationUC) DismissNotice() {
	c.fx.store.Dispatch(state.NoticeDismissed{})
}
