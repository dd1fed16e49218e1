// Package state holds the client's single state container: session, chat
// collection, active conversation and realtime channel status. Every mutation
// goes through Store.Dispatch and the pure Reduce function.
package state

import "lexa-chat/internal/domain/model"

type SessionState struct {
	User          *model.User
	Authenticated bool
	Loading       bool
	// Error is the last login/registration failure. Session validation
	// never writes it: an anonymous visitor is the expected steady state.
	Error string
}

type ChatsState struct {
	Items   []model.Chat
	Loaded  bool
	Loading bool
}

// ActiveState is the active conversation tracker.
//
// TentativeChatID is an id read back from persisted client state that has
// not been confirmed against a loaded chat collection yet. It is never
// displayed; it collapses into ChatID (or is discarded) once chats load.
//
// Generation increments on every change of ChatID so async results can be
// matched against the chat switch that requested them.
type ActiveState struct {
	TentativeChatID string
	ChatID          string
	Messages        []model.Message
	Generation      uint64
	LoadingHistory  bool
}

type ChannelState struct {
	Phase  model.ChannelPhase
	ChatID string
	// Sending is true between an outbound message and the matching reply,
	// send failure or reply timeout. SendSeq identifies the in-flight send.
	Sending   bool
	SendSeq   uint64
	SendError string
}

type State struct {
	Session SessionState
	Chats   ChatsState
	Active  ActiveState
	Channel ChannelState
	// Notice is a non-blocking, user-visible report of a failed mutation.
	Notice string
}

func Initial() State {
	return State{
		Chats:   ChatsState{Items: []model.Chat{}},
		Active:  ActiveState{Messages: []model.Message{}},
		Channel: ChannelState{Phase: model.ChannelDisconnected},
	}
}

// HasActiveChat reports whether a confirmed chat is selected.
func (s State) HasActiveChat() bool { return s.Active.ChatID != "" }

// ActiveChat returns the selected chat summary, if it is in the collection.
func (s State) ActiveChat() (model.Chat, bool) {
	if i := model.IndexOfChat(s.Chats.Items, s.Active.ChatID); i >= 0 {
		return s.Chats.Items[i], true
	}
	return model.Chat{}, false
}
