package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case stateChangedMsg:
		cmds = append(cmds, m.applyState(), waitForChange(m.updates))
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keysGlobal.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if !m.st.Session.Authenticated {
			return m, m.updateAuth(msg)
		}
		return m, m.updateChats(msg)
	}

	return m, nil
}

// applyState re-reads the store and reacts to session transitions.
func (m *Model) applyState() tea.Cmd {
	wasAuthenticated := m.st.Session.Authenticated
	m.st = m.client.State()
	m.syncCursor()

	var cmd tea.Cmd
	switch {
	case !wasAuthenticated && m.st.Session.Authenticated:
		m.formErr = ""
		m.fields[fieldPassword].Reset()
		m.fields[m.field].Blur()
		m.focus = focusSidebar
		m.composer.Blur()
	case wasAuthenticated && !m.st.Session.Authenticated:
		m.naming = false
		m.pendingDelete = ""
		m.sentDraft = ""
		m.composer.Reset()
		m.composer.Blur()
		cmd = m.fields[m.field].Focus()
	}

	if m.sentDraft != "" && m.st.Channel.SendSeq != m.sentSeq {
		if strings.TrimSpace(m.composer.Value()) == m.sentDraft {
			m.composer.Reset()
		}
		m.sentDraft = ""
	}

	if m.ready {
		wasAtBottom := m.viewport.AtBottom()
		m.viewport.SetContent(m.renderConversation())
		if wasAtBottom {
			m.viewport.GotoBottom()
		}
	}
	return cmd
}

func (m *Model) updateAuth(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keysGlobal.Dismiss):
		if m.st.Notice != "" {
			m.client.DismissNotice()
		}
		return nil

	case key.Matches(msg, keysAuth.ToggleSignUp):
		m.registering = !m.registering
		m.formErr = ""
		return m.focusField(m.visibleFields()[0])

	case key.Matches(msg, keysAuth.NextField):
		return m.moveField(1)

	case key.Matches(msg, keysAuth.PrevField):
		return m.moveField(-1)

	case key.Matches(msg, keysAuth.Submit):
		if m.st.Session.Loading {
			return nil
		}
		m.submitAuth()
		return nil
	}

	var cmd tea.Cmd
	m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	return cmd
}

func (m *Model) moveField(delta int) tea.Cmd {
	order := m.visibleFields()
	pos := 0
	for i, f := range order {
		if f == m.field {
			pos = i
		}
	}
	pos = (pos + delta + len(order)) % len(order)
	return m.focusField(order[pos])
}

func (m *Model) focusField(f int) tea.Cmd {
	m.fields[m.field].Blur()
	m.field = f
	return m.fields[f].Focus()
}

func (m *Model) submitAuth() {
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	password := m.fields[fieldPassword].Value()
	if email == "" || password == "" {
		m.formErr = "Email and password are required"
		return
	}
	m.formErr = ""
	if !m.registering {
		m.client.Login(adapter.Credentials{Email: email, Password: password})
		return
	}
	m.client.Register(adapter.Registration{
		FirstName: strings.TrimSpace(m.fields[fieldFirstName].Value()),
		LastName:  strings.TrimSpace(m.fields[fieldLastName].Value()),
		Email:     email,
		Password:  password,
	})
}

func (m *Model) updateChats(msg tea.KeyMsg) tea.Cmd {
	// Modal prompts swallow every key.
	if m.naming {
		return m.updateNaming(msg)
	}
	if m.pendingDelete != "" {
		switch {
		case key.Matches(msg, keysChats.Confirm):
			m.client.DeleteChat(m.pendingDelete)
			m.pendingDelete = ""
		case key.Matches(msg, keysChats.Cancel):
			m.pendingDelete = ""
		}
		return nil
	}

	switch {
	case key.Matches(msg, keysGlobal.Dismiss):
		if m.st.Notice != "" {
			m.client.DismissNotice()
		}
		return nil

	case key.Matches(msg, keysChats.CycleFocus):
		return m.toggleFocus()

	case key.Matches(msg, keysChats.NewChat):
		m.naming = true
		m.title.Reset()
		m.composer.Blur()
		return m.title.Focus()

	case key.Matches(msg, keysChats.DeleteChat):
		m.pendingDelete = m.selectedChatID()
		return nil

	case key.Matches(msg, keysChats.Refresh):
		m.client.RefreshChats()
		return nil

	case key.Matches(msg, keysChats.Logout):
		m.client.Logout()
		return nil

	case key.Matches(msg, keysChats.ScrollUp), key.Matches(msg, keysChats.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateComposer(msg)
}

func (m *Model) updateNaming(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		title := m.title.Value()
		m.naming = false
		m.title.Blur()
		if strings.TrimSpace(title) != "" {
			m.client.CreateChat(title)
		}
		return nil
	case tea.KeyEsc:
		m.naming = false
		m.title.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return cmd
}

func (m *Model) updateSidebar(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keysChats.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keysChats.Down):
		if m.cursor < len(m.st.Chats.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keysChats.Open):
		id := m.selectedChatID()
		if id == "" {
			return nil
		}
		// reopening the active chat redials a channel that gave up
		if id != m.st.Active.ChatID || m.st.Channel.Phase == model.ChannelDisconnected {
			m.client.SelectChat(id)
		}
		return m.toggleFocus()
	}
	return nil
}

func (m *Model) updateComposer(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keysChats.Send) {
		text := strings.TrimSpace(m.composer.Value())
		if text == "" || m.st.Channel.Sending {
			return nil
		}
		// the draft stays until the send is accepted
		m.sentDraft = text
		m.sentSeq = m.st.Channel.SendSeq
		m.client.Send(text)
		return nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusSidebar {
		m.focus = focusComposer
		return m.composer.Focus()
	}
	m.focus = focusSidebar
	m.composer.Blur()
	return nil
}

// recalculateLayout sizes the conversation viewport and composer to the window.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	convWidth := m.width - sidebarWidth - 2
	if convWidth < 10 {
		convWidth = 10
	}
	vpHeight := m.height - headerHeight - footerHeight - composerHeight - inputBorderHeight
	if vpHeight < minViewportHeight {
		vpHeight = minViewportHeight
	}

	if !m.ready {
		m.viewport = viewport.New(convWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = convWidth
		m.viewport.Height = vpHeight
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
	m.composer.SetWidth(convWidth - textAreaStyle.GetHorizontalBorderSize())
}
