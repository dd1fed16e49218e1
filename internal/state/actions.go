package state

import "lexa-chat/internal/domain/model"

// Action is a state transition request handled by Reduce.
type Action interface {
	Name() string
}

// ---- session ----

type SessionValidationStarted struct{}
type SessionValidated struct{ User *model.User }
type SessionInvalidated struct{}
type AuthStarted struct{}
type AuthFailed struct{ Message string }
type UserSet struct{ User *model.User }
type LoggedOut struct{}

// ---- chat collection ----

type ChatsLoadStarted struct{}
type ChatsLoaded struct{ Chats []model.Chat }
type ChatsLoadFailed struct{}
type ChatCreated struct{ Chat model.Chat }
type ChatDeleted struct{ ChatID string }

// ---- active conversation ----

type ChatSelected struct{ ChatID string }
type TentativeRestored struct{ ChatID string }
type ActiveCleared struct{}
type HistoryLoaded struct {
	ChatID     string
	Generation uint64
	Messages   []model.Message
}
type HistoryLoadFailed struct {
	ChatID     string
	Generation uint64
}
type UserMessageAppended struct{ Message model.Message }

// ---- realtime ----

type ChannelPhaseChanged struct {
	ChatID string
	Phase  model.ChannelPhase
}
type SendStarted struct {
	ChatID  string
	Message model.Message
}
type ReplyReceived struct {
	ChatID  string
	Message model.Message
}

// SendCompleted ends a send that produced no reply message.
type SendCompleted struct {
	ChatID string
	Seq    uint64
}
type SendFailed struct {
	ChatID string
	Seq    uint64
	Reason string
}
type SendTimedOut struct {
	ChatID string
	Seq    uint64
}

// ---- notices ----

type NoticeRaised struct{ Message string }
type NoticeDismissed struct{}

func (SessionValidationStarted) Name() string { return "session_validation_started" }
func (SessionValidated) Name() string         { return "session_validated" }
func (SessionInvalidated) Name() string       { return "session_invalidated" }
func (AuthStarted) Name() string              { return "auth_started" }
func (AuthFailed) Name() string               { return "auth_failed" }
func (UserSet) Name() string                  { return "user_set" }
func (LoggedOut) Name() string                { return "logged_out" }
func (ChatsLoadStarted) Name() string         { return "chats_load_started" }
func (ChatsLoaded) Name() string              { return "chats_loaded" }
func (ChatsLoadFailed) Name() string          { return "chats_load_failed" }
func (ChatCreated) Name() string              { return "chat_created" }
func (ChatDeleted) Name() string              { return "chat_deleted" }
func (ChatSelected) Name() string             { return "chat_selected" }
func (TentativeRestored) Name() string        { return "tentative_restored" }
func (ActiveCleared) Name() string            { return "active_cleared" }
func (HistoryLoaded) Name() string            { return "history_loaded" }
func (HistoryLoadFailed) Name() string        { return "history_load_failed" }
func (UserMessageAppended) Name() string      { return "user_message_appended" }
func (ChannelPhaseChanged) Name() string      { return "channel_phase_changed" }
func (SendStarted) Name() string              { return "send_started" }
func (ReplyReceived) Name() string            { return "reply_received" }
func (SendCompleted) Name() string            { return "send_completed" }
func (SendFailed) Name() string               { return "send_failed" }
func (SendTimedOut) Name() string             { return "send_timed_out" }
func (NoticeRaised) Name() string             { return "notice_raised" }
func (NoticeDismissed) Name() string          { return "notice_dismissed" }
