package ui

import (
	"context"

	"coursechat/app/client/backend"
	"coursechat/app/config"
	"coursechat/app/service/confirm"
	"coursechat/app/service/directory"
	"coursechat/app/service/exchange"
	"coursechat/app/service/identity"
	"coursechat/app/service/notify"
	"coursechat/app/service/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/samber/do"
)

const sidebarWidth = 32

type Runner struct {
	model Model
}

func New(di *do.Injector) (*Runner, error) {
	cfg := do.MustInvoke[*config.Config](di)

	ta := textarea.New()
	ta.Placeholder = "Ask a question about the course..."
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Runner{
		model: Model{
			cfg:           cfg,
			appCtx:        do.MustInvoke[context.Context](di),
			backendClient: do.MustInvoke[*backend.Client](di),
			identitySvc:   do.MustInvoke[*identity.Service](di),
			directorySvc:  do.MustInvoke[*directory.Service](di),
			exchangeSvc:   do.MustInvoke[*exchange.Service](di),
			sessionSvc:    do.MustInvoke[*session.Service](di),
			confirmSvc:    do.MustInvoke[*confirm.Service](di),
			notifySvc:     do.MustInvoke[*notify.Service](di),
			keyMap:        DefaultKeyMap,
			styles:        DefaultStyles(),
			textarea:      ta,
			spinner:       sp,
			inputFocused:  true,
		},
	}, nil
}

func (r *Runner) Run(ctx context.Context) error {
	program := tea.NewProgram(r.model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := program.Run()
	return err
}

type Model struct {
	cfg           *config.Config
	appCtx        context.Context
	backendClient *backend.Client
	identitySvc   *identity.Service
	directorySvc  *directory.Service
	exchangeSvc   *exchange.Service
	sessionSvc    *session.Service
	confirmSvc    *confirm.Service
	notifySvc     *notify.Service

	keyMap   KeyMap
	styles   *Styles
	renderer *glamour.TermRenderer

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// inputFocused toggles between the textarea and the sidebar list.
	inputFocused bool
	cursor       int
	notice       *notify.Notice
	width        int
	height       int
	ready        bool
}

type (
	bootstrappedMsg struct{}
	answerMsg       struct {
		text string
		err  error
	}
	historyMsg struct{ err error }
	deletedMsg struct{ err error }
	clearedMsg struct{ err error }
	noticeMsg  notify.Notice
	noticeTTL  struct{}
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.bootstrapCmd(), m.listenNoticesCmd())
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		m.sessionSvc.Bootstrap(m.appCtx)
		return bootstrappedMsg{}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		err := m.sessionSvc.Send(m.appCtx, text)
		return answerMsg{text: text, err: err}
	}
}

func (m Model) selectCmd(id backend.ConversationID) tea.Cmd {
	return func() tea.Msg {
		return historyMsg{err: m.sessionSvc.Select(m.appCtx, id)}
	}
}

func (m Model) deleteCmd(id backend.ConversationID) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{err: m.sessionSvc.Delete(m.appCtx, id)}
	}
}

func (m Model) confirmCmd() tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: m.confirmSvc.Confirm(m.appCtx)}
	}
}

func (m Model) listenNoticesCmd() tea.Cmd {
	return func() tea.Msg {
		notice, ok := <-m.notifySvc.Channel()
		if !ok {
			return nil
		}
		return noticeMsg(notice)
	}
}
