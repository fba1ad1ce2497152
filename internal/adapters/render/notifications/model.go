package notifications

import (
	"errors"
	"io"

	"github.com/bnema/maplog-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	notifications []domain.Notification
	opts          RenderOptions
	styles        styles
	output        string
}

func newModel(notifications []domain.Notification, opts RenderOptions) model {
	return model{
		notifications: notifications,
		opts:          opts,
		styles:        newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.notifications, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(notifications []domain.Notification, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(notifications, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
