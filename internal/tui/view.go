package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lexa-chat/internal/domain/model"
)

const (
	truncateSuffix = "…"
)

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.st.Session.Authenticated {
		return m.renderAuth()
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderMain())
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderAuth() string {
	var b strings.Builder
	heading := "Sign in"
	if m.registering {
		heading = "Create an account"
	}
	b.WriteString(titleStyle.Render(" " + heading + " "))
	b.WriteString("\n\n")

	labels := map[int]string{
		fieldFirstName: "First name",
		fieldLastName:  "Last name",
		fieldEmail:     "Email",
		fieldPassword:  "Password",
	}
	for _, f := range m.visibleFields() {
		b.WriteString(labelStyle.Render(labels[f]))
		b.WriteString("\n")
		b.WriteString(m.fields[f].View())
		b.WriteString("\n\n")
	}

	switch {
	case m.st.Session.Loading:
		b.WriteString(fmt.Sprintf("%s Checking session...", m.spinner.View()))
	case m.formErr != "":
		b.WriteString(errorStyle.Render(m.formErr))
	case m.st.Session.Error != "":
		b.WriteString(errorStyle.Render(m.st.Session.Error))
	}
	if m.st.Notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render("! " + m.st.Notice))
	}

	toggle := "ctrl+r: create account"
	if m.registering {
		toggle = "ctrl+r: back to sign in"
	}
	help := helpStyle.Render("tab: next field • enter: submit • " + toggle + " • ctrl+c: quit")
	return formStyle.Render(b.String()) + "\n" + help
}

func (m *Model) renderTitle() string {
	user := m.st.Session.User.DisplayName()
	chat := "no chat selected"
	if c, ok := m.st.ActiveChat(); ok {
		chat = c.Title
	}
	phase := string(m.st.Channel.Phase)
	style, ok := phaseStyles[phase]
	if !ok {
		style = phaseStyles[string(model.ChannelDisconnected)]
	}
	title := fmt.Sprintf(" %s │ %s │ ", user, chat)
	return titleStyle.Width(m.width).Render(title + style.Background(primaryColor).Render("● "+phase))
}

func (m *Model) renderSidebar() string {
	height := m.viewport.Height + composerHeight + inputBorderHeight - 2
	inner := sidebarWidth - sidebarStyle.GetHorizontalFrameSize()

	var b strings.Builder
	switch {
	case m.st.Chats.Loading && len(m.st.Chats.Items) == 0:
		b.WriteString(fmt.Sprintf("%s Loading chats...", m.spinner.View()))
	case len(m.st.Chats.Items) == 0:
		b.WriteString(dimTextStyle.Render("No chats yet.\nctrl+n to start one."))
	}
	for i, c := range m.st.Chats.Items {
		label := truncate(c.Title, inner-2)
		switch {
		case i == m.cursor && m.focus == focusSidebar:
			b.WriteString(chatCursorStyle.Render("› " + label))
		case c.ID == m.st.Active.ChatID:
			b.WriteString(chatActiveStyle.Render("• " + label))
		default:
			b.WriteString(chatItemStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	style := sidebarStyle
	if m.focus == focusSidebar {
		style = sidebarFocusedStyle
	}
	return style.Width(inner).Height(height).Render(b.String())
}

func (m *Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.naming:
		b.WriteString(textAreaFocusedStyle.Width(m.viewport.Width - 2).Render(m.title.View()))
	case m.pendingDelete != "":
		b.WriteString(noticeStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.chatTitle(m.pendingDelete))))
	default:
		style := textAreaStyle
		if m.focus == focusComposer {
			style = textAreaFocusedStyle
		}
		b.WriteString(style.Render(m.composer.View()))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	var b strings.Builder
	if m.st.Notice != "" {
		b.WriteString(noticeStyle.Render("! " + m.st.Notice + "  (esc to dismiss)"))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: focus • enter: open/send • ctrl+n: new • ctrl+x: delete • ctrl+r: refresh • ctrl+o: sign out • ctrl+c: quit"))
	return b.String()
}

// renderConversation renders the active conversation for the viewport.
func (m *Model) renderConversation() string {
	active := m.st.Active
	if !m.st.HasActiveChat() {
		return dimTextStyle.Render("Select a chat or press ctrl+n to create one.")
	}

	width := m.viewport.Width - aiMessageStyle.GetHorizontalFrameSize()
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	if active.LoadingHistory {
		b.WriteString(dimTextStyle.Render("Loading history..."))
		b.WriteString("\n\n")
	} else if len(active.Messages) == 0 {
		b.WriteString(dimTextStyle.Render("No messages yet. Say hello."))
		b.WriteString("\n\n")
	}

	for i, msg := range active.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Sender {
		case model.SenderUser:
			b.WriteString(userMessageStyle.Width(width).Render(msg.Text))
		default:
			b.WriteString(aiMessageStyle.Width(width).Render(msg.Text))
		}
		b.WriteString("\n")
	}

	ch := m.st.Channel
	switch {
	case ch.Sending:
		b.WriteString(fmt.Sprintf("%s waiting for reply...", m.spinner.View()))
	case ch.SendError != "":
		b.WriteString(errorStyle.Render("Error: " + ch.SendError))
	case ch.Phase == model.ChannelDisconnected:
		b.WriteString(dimTextStyle.Render("offline: messages go over HTTP. enter on the chat reconnects"))
	case ch.Phase != model.ChannelConnected:
		b.WriteString(dimTextStyle.Render(fmt.Sprintf("channel %s", ch.Phase)))
	}
	return b.String()
}

func (m *Model) chatTitle(id string) string {
	if i := model.IndexOfChat(m.st.Chats.Items, id); i >= 0 {
		return m.st.Chats.Items[i].Title
	}
	return id
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + truncateSuffix
}
