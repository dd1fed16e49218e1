//go:build !integration

package tui

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/state"
)

type fakeClient struct {
	mu      sync.Mutex
	st      state.State
	intents []string
	creds   adapter.Credentials
	reg     adapter.Registration
	sent    []string
	created []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{st: state.Initial()}
}

func (c *fakeClient) State() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

func (c *fakeClient) set(fn func(*state.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.st)
}

func (c *fakeClient) record(intent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents = append(c.intents, intent)
}

func (c *fakeClient) Login(creds adapter.Credentials) {
	c.creds = creds
	c.record("login")
}

func (c *fakeClient) Register(reg adapter.Registration) {
	c.reg = reg
	c.record("register")
}

func (c *fakeClient) Logout()       { c.record("logout") }
func (c *fakeClient) RefreshChats() { c.record("refresh") }

func (c *fakeClient) CreateChat(title string) {
	c.created = append(c.created, title)
	c.record("create")
}

func (c *fakeClient) DeleteChat(chatID string) { c.record("delete:" + chatID) }
func (c *fakeClient) SelectChat(chatID string) { c.record("select:" + chatID) }

func (c *fakeClient) Send(text string) {
	c.sent = append(c.sent, text)
	c.record("send")
}

func (c *fakeClient) DismissNotice() { c.record("dismiss") }

func (c *fakeClient) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.intents) == 0 {
		return ""
	}
	return c.intents[len(c.intents)-1]
}

func signedIn(st *state.State) {
	st.Session.Authenticated = true
	st.Session.User = &model.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada"}
	st.Chats.Items = []model.Chat{{ID: "c1", Title: "First"}, {ID: "c2", Title: "Second"}}
	st.Chats.Loaded = true
}

func newTestModel(t *testing.T, c *fakeClient) *Model {
	t.Helper()
	m := NewModel(c, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func press(m *Model, k tea.KeyType) {
	m.Update(tea.KeyMsg{Type: k})
}

func typeRune(m *Model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestAuthScreen(t *testing.T) {
	t.Run("login submits credentials", func(t *testing.T) {
		c := newFakeClient()
		m := newTestModel(t, c)
		m.fields[fieldEmail].SetValue(" ada@example.com ")
		m.fields[fieldPassword].SetValue("secret")
		press(m, tea.KeyEnter)
		if c.last() != "login" {
			t.Fatalf("intent = %q", c.last())
		}
		if c.creds.Email != "ada@example.com" || c.creds.Password != "secret" {
			t.Fatalf("creds = %+v", c.creds)
		}
	})

	t.Run("missing fields stay local", func(t *testing.T) {
		c := newFakeClient()
		m := newTestModel(t, c)
		press(m, tea.KeyEnter)
		if c.last() != "" {
			t.Fatalf("unexpected intent %q", c.last())
		}
		if !strings.Contains(m.View(), "required") {
			t.Fatalf("expected validation message in view")
		}
	})

	t.Run("ctrl+r toggles registration", func(t *testing.T) {
		c := newFakeClient()
		m := newTestModel(t, c)
		press(m, tea.KeyCtrlR)
		if !m.registering || m.field != fieldFirstName {
			t.Fatalf("registering=%v field=%d", m.registering, m.field)
		}
		m.fields[fieldFirstName].SetValue("Ada")
		m.fields[fieldLastName].SetValue("Lovelace")
		m.fields[fieldEmail].SetValue("ada@example.com")
		m.fields[fieldPassword].SetValue("secret")
		press(m, tea.KeyEnter)
		if c.last() != "register" || c.reg.LastName != "Lovelace" {
			t.Fatalf("intent=%q reg=%+v", c.last(), c.reg)
		}
	})

	t.Run("tab cycles visible fields", func(t *testing.T) {
		m := newTestModel(t, newFakeClient())
		press(m, tea.KeyTab)
		if m.field != fieldPassword {
			t.Fatalf("field = %d", m.field)
		}
		press(m, tea.KeyTab)
		if m.field != fieldEmail {
			t.Fatalf("field = %d", m.field)
		}
	})

	t.Run("submit ignored while session loads", func(t *testing.T) {
		c := newFakeClient()
		c.set(func(st *state.State) { st.Session.Loading = true })
		m := newTestModel(t, c)
		m.fields[fieldEmail].SetValue("ada@example.com")
		m.fields[fieldPassword].SetValue("secret")
		press(m, tea.KeyEnter)
		if c.last() != "" {
			t.Fatalf("unexpected intent %q", c.last())
		}
	})

	t.Run("session error is shown", func(t *testing.T) {
		c := newFakeClient()
		c.set(func(st *state.State) { st.Session.Error = "Invalid credentials" })
		m := newTestModel(t, c)
		if !strings.Contains(m.View(), "Invalid credentials") {
			t.Fatalf("view missing session error")
		}
	})
}

func TestStateChanges(t *testing.T) {
	t.Run("sign in switches to chat screen", func(t *testing.T) {
		c := newFakeClient()
		m := newTestModel(t, c)
		m.fields[fieldPassword].SetValue("secret")
		c.set(signedIn)
		m.Update(stateChangedMsg{})
		if m.fields[fieldPassword].Value() != "" {
			t.Fatalf("password kept after sign in")
		}
		view := m.View()
		if !strings.Contains(view, "First") || !strings.Contains(view, "Ada") {
			t.Fatalf("chat screen not rendered:\n%s", view)
		}
	})

	t.Run("cursor follows active chat", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		c.set(func(st *state.State) { st.Active.ChatID = "c2" })
		m.Update(stateChangedMsg{})
		if m.cursor != 1 {
			t.Fatalf("cursor = %d", m.cursor)
		}
	})

	t.Run("cursor clamps when chats shrink", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyDown)
		c.set(func(st *state.State) { st.Chats.Items = st.Chats.Items[:1] })
		m.Update(stateChangedMsg{})
		if m.cursor != 0 {
			t.Fatalf("cursor = %d", m.cursor)
		}
	})

	t.Run("conversation renders messages and send error", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		c.set(func(st *state.State) {
			st.Active.ChatID = "c1"
			st.Active.Messages = []model.Message{
				{ID: "m1", Text: "hello there", Sender: model.SenderUser},
				{ID: "m2", Text: "general kenobi", Sender: model.SenderAI},
			}
			st.Channel.Phase = model.ChannelConnected
			st.Channel.SendError = "no reply received"
		})
		m.Update(stateChangedMsg{})
		out := m.renderConversation()
		for _, want := range []string{"hello there", "general kenobi", "no reply received"} {
			if !strings.Contains(out, want) {
				t.Fatalf("conversation missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("sign out returns to auth screen", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		c.set(func(st *state.State) { *st = state.Initial() })
		m.Update(stateChangedMsg{})
		if !strings.Contains(m.View(), "Sign in") {
			t.Fatalf("expected auth screen")
		}
	})
}

func TestChatScreen(t *testing.T) {
	t.Run("enter on sidebar selects chat", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyDown)
		press(m, tea.KeyEnter)
		if c.last() != "select:c2" {
			t.Fatalf("intent = %q", c.last())
		}
		if m.focus != focusComposer {
			t.Fatalf("focus did not move to composer")
		}
	})

	t.Run("reselecting the active chat is a no-op while connected", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		c.set(func(st *state.State) {
			st.Active.ChatID = "c1"
			st.Channel.ChatID = "c1"
			st.Channel.Phase = model.ChannelConnected
		})
		m := newTestModel(t, c)
		press(m, tea.KeyEnter)
		if c.last() != "" {
			t.Fatalf("unexpected intent %q", c.last())
		}
	})

	t.Run("reselecting the active chat reconnects a dead channel", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		c.set(func(st *state.State) {
			st.Active.ChatID = "c1"
			st.Channel.ChatID = "c1"
			st.Channel.Phase = model.ChannelDisconnected
		})
		m := newTestModel(t, c)
		if !strings.Contains(m.renderConversation(), "reconnects") {
			t.Fatalf("expected a reconnect hint:\n%s", m.renderConversation())
		}
		press(m, tea.KeyEnter)
		if c.last() != "select:c1" {
			t.Fatalf("intent = %q", c.last())
		}
		if m.focus != focusComposer {
			t.Fatalf("focus did not move to composer")
		}
	})

	t.Run("enter in composer keeps the draft until the send starts", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyTab)
		m.composer.SetValue("  hi  ")
		press(m, tea.KeyEnter)
		if len(c.sent) != 1 || c.sent[0] != "hi" {
			t.Fatalf("sent = %v", c.sent)
		}
		if m.composer.Value() != "  hi  " {
			t.Fatalf("composer cleared before the send was accepted")
		}

		c.set(func(st *state.State) {
			st.Channel.Sending = true
			st.Channel.SendSeq++
		})
		m.Update(stateChangedMsg{})
		if m.composer.Value() != "" {
			t.Fatalf("composer not reset after the send started: %q", m.composer.Value())
		}
	})

	t.Run("rejected send keeps the draft", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyTab)
		m.composer.SetValue("important question")
		press(m, tea.KeyEnter)

		c.set(func(st *state.State) { st.Notice = "Select a chat before sending" })
		m.Update(stateChangedMsg{})
		if m.composer.Value() != "important question" {
			t.Fatalf("draft lost on rejection: %q", m.composer.Value())
		}

		press(m, tea.KeyEnter)
		if len(c.sent) != 2 || c.sent[1] != "important question" {
			t.Fatalf("expected the kept draft to be resent, sent = %v", c.sent)
		}
	})

	t.Run("draft edited after submit is not cleared", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyTab)
		m.composer.SetValue("first")
		press(m, tea.KeyEnter)
		m.composer.SetValue("second thoughts")

		c.set(func(st *state.State) { st.Channel.SendSeq++ })
		m.Update(stateChangedMsg{})
		if m.composer.Value() != "second thoughts" {
			t.Fatalf("edited draft was cleared: %q", m.composer.Value())
		}
	})

	t.Run("no send while a reply is pending", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		c.set(func(st *state.State) { st.Channel.Sending = true })
		m := newTestModel(t, c)
		press(m, tea.KeyTab)
		m.composer.SetValue("again")
		press(m, tea.KeyEnter)
		if len(c.sent) != 0 {
			t.Fatalf("sent = %v", c.sent)
		}
		if m.composer.Value() != "again" {
			t.Fatalf("composer cleared")
		}
	})

	t.Run("ctrl+n creates a chat", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyCtrlN)
		if !m.naming {
			t.Fatalf("naming prompt not open")
		}
		m.title.SetValue("Trip plans")
		press(m, tea.KeyEnter)
		if m.naming || len(c.created) != 1 || c.created[0] != "Trip plans" {
			t.Fatalf("naming=%v created=%v", m.naming, c.created)
		}
	})

	t.Run("esc cancels new chat", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyCtrlN)
		press(m, tea.KeyEsc)
		if m.naming || c.last() != "" {
			t.Fatalf("naming=%v intent=%q", m.naming, c.last())
		}
	})

	t.Run("ctrl+x asks before deleting", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyCtrlX)
		if m.pendingDelete != "c1" {
			t.Fatalf("pendingDelete = %q", m.pendingDelete)
		}
		typeRune(m, 'n')
		if m.pendingDelete != "" || c.last() != "" {
			t.Fatalf("cancel did not clear prompt")
		}
		press(m, tea.KeyCtrlX)
		typeRune(m, 'y')
		if c.last() != "delete:c1" {
			t.Fatalf("intent = %q", c.last())
		}
	})

	t.Run("esc dismisses notice", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		c.set(func(st *state.State) { st.Notice = "Failed to delete chat" })
		m := newTestModel(t, c)
		if !strings.Contains(m.View(), "Failed to delete chat") {
			t.Fatalf("notice not shown")
		}
		press(m, tea.KeyEsc)
		if c.last() != "dismiss" {
			t.Fatalf("intent = %q", c.last())
		}
	})

	t.Run("ctrl+o signs out and ctrl+r refreshes", func(t *testing.T) {
		c := newFakeClient()
		c.set(signedIn)
		m := newTestModel(t, c)
		press(m, tea.KeyCtrlR)
		if c.last() != "refresh" {
			t.Fatalf("intent = %q", c.last())
		}
		press(m, tea.KeyCtrlO)
		if c.last() != "logout" {
			t.Fatalf("intent = %q", c.last())
		}
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		m := newTestModel(t, newFakeClient())
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatalf("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected tea.QuitMsg")
		}
	})
}

func TestWaitForChange(t *testing.T) {
	updates := make(chan struct{}, 1)
	updates <- struct{}{}
	if _, ok := waitForChange(updates)().(stateChangedMsg); !ok {
		t.Fatalf("expected stateChangedMsg")
	}
	close(updates)
	if msg := waitForChange(updates)(); msg != nil {
		t.Fatalf("closed subscription produced %v", msg)
	}
	if waitForChange(nil) != nil {
		t.Fatalf("nil subscription should not wait")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a rather long title", 8); got != "a rathe…" {
		t.Fatalf("got %q", got)
	}
}
