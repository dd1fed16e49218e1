// Package tui is the terminal view layer. It renders the client state and
// forwards user intents; it never talks to the network itself.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/state"
)

// Client is the subset of the application facade the view needs.
type Client interface {
	State() state.State
	Login(creds adapter.Credentials)
	Register(reg adapter.Registration)
	Logout()
	RefreshChats()
	CreateChat(title string)
	DeleteChat(chatID string)
	SelectChat(chatID string)
	Send(text string)
	DismissNotice()
}

type focus int

const (
	focusSidebar focus = iota
	focusComposer
)

// Auth form field indexes.
const (
	fieldFirstName = iota
	fieldLastName
	fieldEmail
	fieldPassword
	fieldCount
)

type (
	stateChangedMsg struct{}
)

// Model is the Bubble Tea model for the whole client.
type Model struct {
	client  Client
	updates <-chan struct{}
	st      state.State

	// Layout
	width  int
	height int
	ready  bool

	// Auth screen
	registering bool
	fields      [fieldCount]textinput.Model
	field       int
	formErr     string

	// Chat screen
	focus         focus
	cursor        int
	lastActive    string
	naming        bool
	title         textinput.Model
	pendingDelete string
	viewport      viewport.Model
	composer      textarea.Model
	spinner       spinner.Model

	// draft submitted with enter; cleared from the composer once the send
	// sequence moves past sentSeq
	sentDraft string
	sentSeq   uint64

	quitting bool
}

// NewModel builds the view over client. updates is the store subscription;
// every receive re-reads client.State().
func NewModel(client Client, updates <-chan struct{}) *Model {
	var fields [fieldCount]textinput.Model
	for i := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 40
		fields[i] = ti
	}
	fields[fieldFirstName].Placeholder = "First name"
	fields[fieldLastName].Placeholder = "Last name"
	fields[fieldEmail].Placeholder = "you@example.com"
	fields[fieldPassword].Placeholder = "Password"
	fields[fieldPassword].EchoMode = textinput.EchoPassword
	fields[fieldPassword].EchoCharacter = '•'

	title := textinput.New()
	title.Placeholder = "New chat title"
	title.CharLimit = 120
	title.Prompt = "› "

	ta := textarea.New()
	ta.Placeholder = "Type a message... (Enter to send, Alt+Enter for newline)"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(composerHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := &Model{
		client:   client,
		updates:  updates,
		st:       client.State(),
		fields:   fields,
		field:    fieldEmail,
		title:    title,
		composer: ta,
		spinner:  sp,
	}
	m.fields[m.field].Focus()
	m.syncCursor()
	return m
}

// Init starts listening for state changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.updates),
		textinput.Blink,
		m.spinner.Tick,
	)
}

// waitForChange blocks on the store subscription and turns one wake-up into
// a stateChangedMsg. A closed subscription ends the loop.
func waitForChange(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Run drives the model until the user quits or ctx is canceled.
func Run(ctx context.Context, client Client, updates <-chan struct{}) error {
	p := tea.NewProgram(NewModel(client, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// visibleFields lists the auth inputs shown for the current mode, in tab order.
func (m *Model) visibleFields() []int {
	if m.registering {
		return []int{fieldFirstName, fieldLastName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

// syncCursor keeps the sidebar cursor inside the list and follows the active
// chat when it changes underneath the view.
func (m *Model) syncCursor() {
	items := m.st.Chats.Items
	if active := m.st.Active.ChatID; active != m.lastActive {
		m.lastActive = active
		for i, c := range items {
			if c.ID == active {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectedChatID() string {
	items := m.st.Chats.Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return ""
	}
	return items[m.cursor].ID
}
