package ui

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"coursechat/app/service/confirm"
	"coursechat/app/service/exchange"
	"coursechat/app/service/notify"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshContent()

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}

		if m.confirmSvc.Phase() != confirm.PhaseHidden {
			return m.updateConfirm(msg)
		}

		if m.inputFocused {
			return m.updateInput(msg)
		}

		return m.updateSidebar(msg)

	case bootstrappedMsg:
		m.refreshContent()
		m.viewport.GotoBottom()

	case answerMsg:
		m.handleAnswer(msg)
		m.refreshContent()
		m.viewport.GotoBottom()

	case historyMsg:
		if msg.err != nil {
			slog.Warn("History load failed", "error", msg.err)
		}
		m.refreshContent()
		m.viewport.GotoBottom()

	case deletedMsg, clearedMsg:
		m.refreshContent()
		m.clampCursor()

	case noticeMsg:
		notice := notify.Notice(msg)
		m.notice = &notice
		cmds = append(cmds,
			m.listenNoticesCmd(),
			tea.Tick(4*time.Second, func(time.Time) tea.Msg { return noticeTTL{} }),
		)

	case noticeTTL:
		m.notice = nil

	case spinner.TickMsg:
		if m.exchangeSvc.State() == exchange.StateSending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.refreshContent()
			m.viewport.GotoBottom()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		return m, m.confirmCmd()
	case "n", "esc":
		m.confirmSvc.Cancel()
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.SubmitMessage):
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return m, nil
		}
		m.textarea.Reset()
		return m, tea.Batch(m.sendCmd(text), m.spinner.Tick)

	case key.Matches(msg, m.keyMap.FocusSidebar):
		m.inputFocused = false
		m.textarea.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.directorySvc.Conversations()

	switch {
	case key.Matches(msg, m.keyMap.FocusInput):
		m.inputFocused = true
		return m, m.textarea.Focus()

	case key.Matches(msg, m.keyMap.NewChat):
		m.sessionSvc.StartNew()
		m.refreshContent()
		m.inputFocused = true
		return m, m.textarea.Focus()

	case key.Matches(msg, m.keyMap.PrevChat):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NextChat):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.OpenChat):
		if m.cursor >= 0 && m.cursor < len(list) {
			return m, m.selectCmd(list[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteChat):
		if m.cursor >= 0 && m.cursor < len(list) {
			return m, m.deleteCmd(list[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ClearAll):
		m.confirmSvc.Request()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleAnswer(msg answerMsg) {
	switch {
	case msg.err == nil:

	case errors.Is(msg.err, exchange.ErrNotAuthenticated):
		// The typed text is preserved so logging in does not lose it.
		m.textarea.SetValue(msg.text)
		m.notifySvc.Publish(notify.LevelWarn, "Log in to ask questions: "+m.backendClient.LoginURL())

	case errors.Is(msg.err, exchange.ErrBusy):
		m.textarea.SetValue(msg.text)

	case errors.Is(msg.err, exchange.ErrEmptyQuery),
		errors.Is(msg.err, exchange.ErrStaleView):

	default:
		// The engine already appended the failure notice to the buffer.
		slog.Warn("Exchange failed", "error", msg.err)
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := width - sidebarWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}

	inputHeight := m.textarea.Height() + 1
	chatHeight := height - inputHeight - 2
	if chatHeight < 3 {
		chatHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = chatHeight
	}

	m.textarea.SetWidth(chatWidth)

	renderer, err := newAnswerRenderer(m.cfg.UI.AnswerStyle, chatWidth)
	if err != nil {
		slog.Warn("Failed to build markdown renderer", "error", err)
	} else {
		m.renderer = renderer
	}
}

func newAnswerRenderer(style string, width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}

	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	return glamour.NewTermRenderer(opts...)
}

func (m *Model) clampCursor() {
	count := len(m.directorySvc.Conversations())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
