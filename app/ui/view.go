package ui

import (
	"strings"

	"coursechat/app/client/backend"
	"coursechat/app/service/confirm"
	"coursechat/app/service/exchange"
	"coursechat/app/service/session"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	if m.confirmSvc.Phase() != confirm.PhaseHidden {
		return m.viewConfirm()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.textarea.View(),
		m.viewStatusBar(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), main)
}

func (m Model) viewSidebar() string {
	var b strings.Builder

	b.WriteString("Conversations\n\n")

	active := m.sessionSvc.Active()
	list := m.directorySvc.Conversations()

	if len(list) == 0 {
		b.WriteString(m.styles.StatusBar.Render("no conversations yet"))
		b.WriteString("\n")
	}

	for i, convo := range list {
		title := truncateTitle(convo.Title, sidebarWidth-4)

		line := "  " + title
		if active.Kind == session.ActiveExisting && active.ID == convo.ID {
			line = m.styles.ActiveItem.Render("▸ " + title)
		}
		if !m.inputFocused && i == m.cursor {
			line = m.styles.SelectedItem.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewIdentity())

	return m.styles.Sidebar.
		Width(sidebarWidth).
		Height(m.height - 1).
		Render(b.String())
}

// truncateTitle cuts on runes, not bytes, so multi-byte titles stay intact.
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}

	return string(runes[:max]) + "…"
}

func (m Model) viewIdentity() string {
	if user := m.identitySvc.User(); user != nil {
		return m.styles.StatusBar.Render(user.Name + "\nlogout: " + m.backendClient.LogoutURL())
	}

	return m.styles.StatusBar.Render("not logged in\nlogin: " + m.backendClient.LoginURL())
}

func (m Model) viewStatusBar() string {
	if m.notice != nil {
		return m.styles.Notice.Render(m.notice.Text)
	}

	hints := "tab: switch focus • n: new chat • d: delete • x: clear all • ctrl+c: quit"
	return m.styles.StatusBar.Render(hints)
}

func (m Model) viewConfirm() string {
	box := m.styles.ModalBox.Render(
		"Delete ALL conversations?\n\n" +
			m.confirmProgress() +
			"[y] confirm    [n] cancel",
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) confirmProgress() string {
	if m.confirmSvc.Phase() == confirm.PhaseBusy {
		return m.spinner.View() + " clearing...\n\n"
	}
	return ""
}

// refreshContent rebuilds the viewport from the engine's buffer.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}

	var b strings.Builder

	messages := m.exchangeSvc.Messages()

	if len(messages) == 0 {
		b.WriteString(m.greeting())
	}

	for _, msg := range messages {
		if msg.Role == backend.RoleUser {
			b.WriteString(m.styles.UserMessage.Render("You: " + msg.Content))
			b.WriteString("\n")
			continue
		}

		b.WriteString(m.renderAnswer(msg.Content))
		for _, source := range msg.Sources {
			b.WriteString(m.styles.SourceLink.Render("  ↗ "+source.Title+" — "+source.URL) + "\n")
		}
		b.WriteString("\n")
	}

	if m.exchangeSvc.State() == exchange.StateSending {
		b.WriteString(m.spinner.View() + " thinking...\n")
	}

	m.viewport.SetContent(b.String())
}

func (m Model) greeting() string {
	if user := m.identitySvc.User(); user != nil {
		return "Hello, " + user.Name + "! Select a past conversation or start a new one.\n"
	}

	return "Hello! Please log in to start a new conversation and save your history.\n"
}

func (m Model) renderAnswer(content string) string {
	if m.renderer == nil {
		return content + "\n"
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}

	return rendered
}
