package state

import "lexa-chat/internal/domain/model"

// SendTimeoutReason is the SendError set when no reply arrives in time.
const SendTimeoutReason = "no reply received"

// Reduce returns the state that results from applying a to s. It never
// mutates s: slices are copied before they change, so snapshots handed out
// by the Store stay valid.
func Reduce(s State, a Action) State {
	switch a := a.(type) {

	// ---- session ----
	case SessionValidationStarted:
		s.Session.Loading = true
	case SessionValidated:
		s = authenticate(s, a.User)
	case UserSet:
		s = authenticate(s, a.User)
	case SessionInvalidated:
		s = deauthenticate(s)
	case LoggedOut:
		s = deauthenticate(s)
	case AuthStarted:
		s.Session.Loading = true
		s.Session.Error = ""
	case AuthFailed:
		s.Session.Loading = false
		s.Session.Error = a.Message

	// ---- chat collection ----
	case ChatsLoadStarted:
		s.Chats.Loading = true
	case ChatsLoaded:
		items := make([]model.Chat, 0, len(a.Chats))
		items = append(items, a.Chats...)
		s.Chats = ChatsState{Items: items, Loaded: true}
		s = resolveActive(s)
	case ChatsLoadFailed:
		// A failed load is not a load: the tentative id stays pending.
		s.Chats = ChatsState{Items: []model.Chat{}}
	case ChatCreated:
		items := make([]model.Chat, 0, len(s.Chats.Items)+1)
		items = append(items, a.Chat)
		for _, c := range s.Chats.Items {
			if c.ID != a.Chat.ID {
				items = append(items, c)
			}
		}
		s.Chats.Items = items
		s = activate(s, a.Chat.ID)
		// A brand-new chat has no history to wait for.
		s.Active.LoadingHistory = false
	case ChatDeleted:
		items := make([]model.Chat, 0, len(s.Chats.Items))
		for _, c := range s.Chats.Items {
			if c.ID != a.ChatID {
				items = append(items, c)
			}
		}
		s.Chats.Items = items
		if s.Active.TentativeChatID == a.ChatID {
			s.Active.TentativeChatID = ""
		}
		if s.Active.ChatID == a.ChatID {
			s = clearActive(s)
		}

	// ---- active conversation ----
	case ChatSelected:
		if a.ChatID == "" {
			s = clearActive(s)
			break
		}
		s = activate(s, a.ChatID)
	case TentativeRestored:
		if a.ChatID == "" || s.Active.ChatID != "" {
			break
		}
		s.Active.TentativeChatID = a.ChatID
		s = resolveActive(s)
	case ActiveCleared:
		s = clearActive(s)
	case HistoryLoaded:
		if !current(s, a.ChatID, a.Generation) {
			break
		}
		// Anything already buffered was appended live after the switch.
		msgs := make([]model.Message, 0, len(a.Messages)+len(s.Active.Messages))
		msgs = append(msgs, a.Messages...)
		msgs = append(msgs, s.Active.Messages...)
		s.Active.Messages = msgs
		s.Active.LoadingHistory = false
	case HistoryLoadFailed:
		if current(s, a.ChatID, a.Generation) {
			s.Active.LoadingHistory = false
		}
	case UserMessageAppended:
		if s.Active.ChatID != "" {
			s.Active.Messages = appendMessage(s.Active.Messages, a.Message)
		}

	// ---- realtime ----
	case ChannelPhaseChanged:
		if a.Phase == model.ChannelConnecting || a.ChatID == s.Channel.ChatID {
			s.Channel.ChatID = a.ChatID
			s.Channel.Phase = a.Phase
		}
	case SendStarted:
		if a.ChatID == "" || a.ChatID != s.Active.ChatID || s.Channel.Sending {
			break
		}
		s.Active.Messages = appendMessage(s.Active.Messages, a.Message)
		s.Channel.Sending = true
		s.Channel.SendSeq++
		s.Channel.SendError = ""
	case ReplyReceived:
		if a.ChatID == "" || a.ChatID != s.Active.ChatID {
			break
		}
		s.Active.Messages = appendMessage(s.Active.Messages, a.Message)
		s.Channel.Sending = false
		s.Channel.SendError = ""
	case SendCompleted:
		if s.Channel.Sending && a.ChatID == s.Active.ChatID && a.Seq == s.Channel.SendSeq {
			s.Channel.Sending = false
			s.Channel.SendError = ""
		}
	case SendFailed:
		if s.Channel.Sending && a.ChatID == s.Active.ChatID && a.Seq == s.Channel.SendSeq {
			s.Channel.Sending = false
			s.Channel.SendError = a.Reason
		}
	case SendTimedOut:
		if s.Channel.Sending && a.ChatID == s.Active.ChatID && a.Seq == s.Channel.SendSeq {
			s.Channel.Sending = false
			s.Channel.SendError = SendTimeoutReason
		}

	// ---- notices ----
	case NoticeRaised:
		s.Notice = a.Message
	case NoticeDismissed:
		s.Notice = ""
	}
	return s
}

func authenticate(s State, u *model.User) State {
	if u.IsZero() {
		return deauthenticate(s)
	}
	cp := *u
	s.Session = SessionState{User: &cp, Authenticated: true}
	return s
}

// deauthenticate is the hard boundary: nothing of the previous user's
// conversation survives a transition to logged-out.
func deauthenticate(s State) State {
	wasAuthenticated := s.Session.Authenticated
	s.Session = SessionState{}
	if !wasAuthenticated {
		return s
	}
	s.Chats = ChatsState{Items: []model.Chat{}}
	s = clearActive(s)
	return s
}

func activate(s State, chatID string) State {
	s.Active = ActiveState{
		ChatID:         chatID,
		Messages:       []model.Message{},
		Generation:     s.Active.Generation + 1,
		LoadingHistory: true,
	}
	s.Channel.Sending = false
	s.Channel.SendError = ""
	return s
}

func clearActive(s State) State {
	s.Active = ActiveState{
		Messages:   []model.Message{},
		Generation: s.Active.Generation + 1,
	}
	s.Channel.Sending = false
	s.Channel.SendError = ""
	return s
}

// resolveActive collapses the tentative id against a loaded collection and
// drops a confirmed id that is no longer owned.
func resolveActive(s State) State {
	if !s.Chats.Loaded {
		return s
	}
	if t := s.Active.TentativeChatID; t != "" {
		s.Active.TentativeChatID = ""
		if model.IndexOfChat(s.Chats.Items, t) >= 0 {
			return activate(s, t)
		}
	}
	if s.Active.ChatID != "" && model.IndexOfChat(s.Chats.Items, s.Active.ChatID) < 0 {
		s = clearActive(s)
	}
	return s
}

func current(s State, chatID string, gen uint64) bool {
	return chatID != "" && chatID == s.Active.ChatID && gen == s.Active.Generation
}

func appendMessage(ms []model.Message, m model.Message) []model.Message {
	out := make([]model.Message, len(ms), len(ms)+1)
	copy(out, ms)
	return append(out, m)
}
