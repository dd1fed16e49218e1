package web

import (
	"encoding/json"
	"net/http"

	"lexa-chat/internal/infra/logging"
	"lexa-chat/internal/state"
)

type sessionView struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
}

type chatsView struct {
	Count   int  `json:"count"`
	Loaded  bool `json:"loaded"`
	Loading bool `json:"loading"`
}

type activeView struct {
	ChatID          string `json:"chat_id,omitempty"`
	TentativeChatID string `json:"tentative_chat_id,omitempty"`
	Generation      uint64 `json:"generation"`
	Messages        int    `json:"messages"`
	LoadingHistory  bool   `json:"loading_history"`
}

type channelView struct {
	Phase     string `json:"phase"`
	ChatID    string `json:"chat_id,omitempty"`
	Sending   bool   `json:"sending"`
	SendSeq   uint64 `json:"send_seq"`
	SendError string `json:"send_error,omitempty"`
}

// stateSnapshot is the debug view of the store: counts instead of message
// text, and the user's email redacted outside dev mode.
type stateSnapshot struct {
	Session sessionView `json:"session"`
	Chats   chatsView   `json:"chats"`
	Active  activeView  `json:"active"`
	Channel channelView `json:"channel"`
	Notice  string      `json:"notice,omitempty"`
}

func snapshot(s state.State, dev bool) stateSnapshot {
	snap := stateSnapshot{
		Session: sessionView{
			Authenticated: s.Session.Authenticated,
			Loading:       s.Session.Loading,
			Error:         s.Session.Error,
		},
		Chats: chatsView{Count: len(s.Chats.Items), Loaded: s.Chats.Loaded, Loading: s.Chats.Loading},
		Active: activeView{
			ChatID:          s.Active.ChatID,
			TentativeChatID: s.Active.TentativeChatID,
			Generation:      s.Active.Generation,
			Messages:        len(s.Active.Messages),
			LoadingHistory:  s.Active.LoadingHistory,
		},
		Channel: channelView{
			Phase:     string(s.Channel.Phase),
			ChatID:    s.Channel.ChatID,
			Sending:   s.Channel.Sending,
			SendSeq:   s.Channel.SendSeq,
			SendError: s.Channel.SendError,
		},
		Notice: s.Notice,
	}
	if s.Session.User != nil {
		snap.Session.User = logging.Redact(s.Session.User.Email, dev)
	}
	return snap
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func stateHandler(src StateSource, dev bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot(src.State(), dev))
	}
}
