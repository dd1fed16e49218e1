package usecase

import (
	"context"
	"sync"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/infra/metrics"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

var _ MessageSender = (*RealtimeSupervisor)(nil)

const connectionLostReason = "connection lost"

// RealtimeSupervisor keeps at most one realtime channel open, always for the
// active chat. A channel is closed before the next one is dialed.
type RealtimeSupervisor struct {
	store  *state.Store
	dialer adapter.RealtimeDialer
	log    *zerolog.Logger

	mu     sync.Mutex
	ch     adapter.RealtimeChannel
	chatID string // chat the supervisor is tracking ("" when idle)
	gen    uint64 // generation of the last dial attempt
	dead   bool   // tracked channel failed and gave up reconnecting
}

func NewRealtimeSupervisor(store *state.Store, dialer adapter.RealtimeDialer, logger *zerolog.Logger) *RealtimeSupervisor {
	l := logger.With().Str("component", "RealtimeSupervisor").Logger()
	return &RealtimeSupervisor{store: store, dialer: dialer, log: &l}
}

// Run follows the store until ctx is done, then closes the open channel.
func (r *RealtimeSupervisor) Run(ctx context.Context) error {
	changes, unsubscribe := r.store.Subscribe()
	defer unsubscribe()

	r.reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			r.closeCurrent()
			return nil
		case <-changes:
			r.reconcile(ctx)
		}
	}
}

// Send emits content on the channel of chatID.
func (r *RealtimeSupervisor) Send(ctx context.Context, chatID, content string) error {
	r.mu.Lock()
	ch, dead := r.ch, r.dead
	r.mu.Unlock()
	if ch == nil || dead || ch.ChatID() != chatID {
		return domain.ErrChannelUnavailable
	}
	return ch.Send(ctx, content)
}

func (r *RealtimeSupervisor) reconcile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	active := r.store.State().Active
	want, gen := active.ChatID, active.Generation

	r.mu.Lock()
	healthy := r.ch != nil && !r.dead
	same := want == r.chatID
	retried := gen == r.gen
	r.mu.Unlock()

	// A dead channel is only redialed when the chat is selected again.
	if same && (healthy || want == "" || retried) {
		return
	}

	r.closeCurrent()
	if want == "" {
		return
	}

	r.mu.Lock()
	r.chatID, r.gen, r.dead = want, gen, false
	r.mu.Unlock()

	r.phase(want, model.ChannelConnecting)
	ch, err := r.dialer.Dial(ctx, want, &channelHandler{sup: r, chatID: want})
	if err != nil {
		r.log.Warn().Err(err).Str("chat_id", want).Msg("realtime connect failed")
		r.mu.Lock()
		r.dead = true
		r.mu.Unlock()
		r.phase(want, model.ChannelDisconnected)
		return
	}

	r.mu.Lock()
	if r.chatID != want {
		r.mu.Unlock()
		_ = ch.Close()
		return
	}
	r.ch = ch
	r.mu.Unlock()
	r.phase(want, model.ChannelConnected)
	r.log.Debug().Str("chat_id", want).Msg("realtime channel open")
}

// closeCurrent tears down the tracked channel outside the lock: Close waits
// for the channel goroutine, which may be inside a handler callback.
func (r *RealtimeSupervisor) closeCurrent() {
	r.mu.Lock()
	ch, chatID := r.ch, r.chatID
	r.ch, r.chatID, r.dead = nil, "", false
	r.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			r.log.Debug().Err(err).Str("chat_id", chatID).Msg("closing realtime channel")
		}
	}
	if chatID != "" {
		r.phase(chatID, model.ChannelDisconnected)
	}
}

func (r *RealtimeSupervisor) phase(chatID string, p model.ChannelPhase) {
	metrics.IncRealtimePhase(string(p))
	r.store.Dispatch(state.ChannelPhaseChanged{ChatID: chatID, Phase: p})
}

func (r *RealtimeSupervisor) tracking(chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chatID == chatID
}

type channelHandler struct {
	sup    *RealtimeSupervisor
	chatID string
}

func (h *channelHandler) OnReply(reply adapter.Reply) {
	r := h.sup
	if reply.ChatID != h.chatID || !r.tracking(h.chatID) {
		metrics.IncRealtimeEvent("in", "dropped")
		r.log.Debug().Str("chat_id", reply.ChatID).Str("channel_chat_id", h.chatID).Msg("dropping reply for another chat")
		return
	}
	_, next := r.store.Dispatch(replyReceived(reply.ChatID, reply.Content))
	if next.Active.ChatID != reply.ChatID {
		metrics.IncRealtimeEvent("in", "dropped")
	}
}

func (h *channelHandler) OnPhase(chatID string, p model.ChannelPhase, err error) {
	r := h.sup
	if chatID != h.chatID || !r.tracking(chatID) {
		return
	}
	if p == model.ChannelDisconnected {
		r.log.Warn().Err(err).Str("chat_id", chatID).Msg("realtime channel gave up reconnecting")
		r.mu.Lock()
		r.dead = true
		r.mu.Unlock()
		st := r.store.State()
		if st.Channel.Sending {
			r.store.Dispatch(state.SendFailed{ChatID: chatID, Seq: st.Channel.SendSeq, Reason: connectionLostReason})
		}
	}
	r.phase(chatID, p)
}
