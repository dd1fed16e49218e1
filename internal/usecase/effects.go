package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

// Effects dispatches actions and runs what a transition implies outside the
// store: the active chat id is mirrored to persistent storage and a freshly
// activated chat gets its history loaded.
type Effects struct {
	store  *state.Store
	api    adapter.ChatAPI
	active repository.ActiveChatRepository
	log    *zerolog.Logger

	persistMu sync.Mutex
	persisted string
	known     bool
}

func NewEffects(store *state.Store, api adapter.ChatAPI, active repository.ActiveChatRepository, logger *zerolog.Logger) *Effects {
	l := logger.With().Str("component", "Effects").Logger()
	return &Effects{store: store, api: api, active: active, log: &l}
}

// Dispatch applies a and then the side effects of the transition.
func (e *Effects) Dispatch(ctx context.Context, a state.Action) (prev, next state.State) {
	prev, next = e.store.Dispatch(a)
	if prev.Active.ChatID != next.Active.ChatID || prev.Active.TentativeChatID != next.Active.TentativeChatID {
		e.persist(ctx)
	}
	if next.Active.ChatID != "" && next.Active.LoadingHistory && next.Active.Generation != prev.Active.Generation {
		e.loadHistory(ctx, next.Active.ChatID, next.Active.Generation)
	}
	return prev, next
}

// remember records what storage is known to hold.
func (e *Effects) remember(chatID string) {
	e.persistMu.Lock()
	e.persisted, e.known = chatID, true
	e.persistMu.Unlock()
}

// persist writes the store's current active id, not the one of the
// transition that triggered it, so racing dispatches converge on the latest.
// A pending tentative id leaves storage alone.
func (e *Effects) persist(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	cur := e.store.State().Active
	if cur.ChatID == "" && cur.TentativeChatID != "" {
		return
	}
	if e.known && e.persisted == cur.ChatID {
		return
	}

	var err error
	if cur.ChatID == "" {
		err = e.active.ClearActiveChat(ctx)
	} else {
		err = e.active.SaveActiveChat(ctx, cur.ChatID)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("chat_id", cur.ChatID).Msg("failed to persist active chat")
		e.known = false
		return
	}
	e.persisted, e.known = cur.ChatID, true
}

func (e *Effects) loadHistory(ctx context.Context, chatID string, gen uint64) {
	start := time.Now()
	records, err := e.api.ListMessages(ctx, chatID)
	if err != nil {
		lvl := e.log.Warn()
		if errors.Is(err, context.Canceled) {
			lvl = e.log.Debug()
		}
		lvl.Err(err).Str("chat_id", chatID).Msg("failed to load chat history")
		e.store.Dispatch(state.HistoryLoadFailed{ChatID: chatID, Generation: gen})
		return
	}

	msgs := make([]model.Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, messageFromRecord(r))
	}
	_, next := e.store.Dispatch(state.HistoryLoaded{ChatID: chatID, Generation: gen, Messages: msgs})
	if next.Active.Generation != gen || next.Active.ChatID != chatID {
		e.log.Debug().Str("chat_id", chatID).Uint64("generation", gen).Msg("discarded stale history")
		return
	}
	e.log.Debug().Str("chat_id", chatID).Int("messages", len(msgs)).Dur("elapsed", time.Since(start)).Msg("history loaded")
}

func messageFromRecord(r adapter.HistoryRecord) model.Message {
	id := r.ID
	if id == "" {
		id = model.NewMessageID()
	}
	return model.Message{
		ID:        id,
		Text:      r.Content,
		Sender:    model.SenderFromRole(r.Role),
		CreatedAt: r.CreatedAt,
	}
}

// raise reports a failed mutation through the non-blocking notice.
func (e *Effects) raise(msg string, err error) {
	var sm serverMessager
	switch {
	case err == nil:
	case errors.As(err, &sm) && sm.ServerMessage() != "":
		msg = msg + ": " + sm.ServerMessage()
	case errors.Is(err, domain.ErrInvalidArgument):
		// local validation; msg already says what was wrong
	default:
		msg = msg + ": " + errorText(err)
	}
	e.store.Dispatch(state.NoticeRaised{Message: msg})
}

type serverMessager interface{ ServerMessage() string }

// errorText prefers the server's own explanation over transport detail.
func errorText(err error) string {
	var sm serverMessager
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "not authorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid request"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return "server unreachable"
}
