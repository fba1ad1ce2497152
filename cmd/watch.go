package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const watchHistorySize = 20

func newWatchCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow notifications live over the push stream",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		return runWatch(cmd, app)
	})

	return cmd
}

type watchEventMsg struct {
	event        api.Event
	unread       int
	friendEvents uint64
}

type watchModel struct {
	styles       watchStyles
	lines        []string
	unread       int
	friendEvents uint64
}

type watchStyles struct {
	title  lipgloss.Style
	badge  lipgloss.Style
	event  lipgloss.Style
	data   lipgloss.Style
	footer lipgloss.Style
}

func newWatchModel() watchModel {
	return watchModel{
		styles: watchStyles{
			title:  lipgloss.NewStyle().Bold(true),
			badge:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			event:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			data:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			footer: lipgloss.NewStyle().Faint(true),
		},
	}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case watchEventMsg:
		m.unread = msg.unread
		m.friendEvents = msg.friendEvents
		line := m.styles.event.Render(msg.event.Type)
		if msg.event.Data != "" {
			line += " " + m.styles.data.Render(msg.event.Data)
		}
		m.lines = append(m.lines, line)
		if len(m.lines) > watchHistorySize {
			m.lines = m.lines[len(m.lines)-watchHistorySize:]
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	header := m.styles.title.Render("maplog live notifications")
	if m.unread > 0 {
		header += "  " + m.styles.badge.Render(fmt.Sprintf("%d unread", m.unread))
	}
	if m.friendEvents > 0 {
		header += "  " + m.styles.badge.Render(fmt.Sprintf("%d friend event(s)", m.friendEvents))
	}

	parts := []string{header}
	if len(m.lines) == 0 {
		parts = append(parts, m.styles.footer.Render("waiting for events..."))
	} else {
		parts = append(parts, m.lines...)
	}
	parts = append(parts, m.styles.footer.Render("press q to quit"))

	return strings.Join(parts, "\n") + "\n"
}

func runWatch(cmd *cobra.Command, app *app) error {
	ctx := cmd.Context()

	program := tea.NewProgram(
		newWatchModel(),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(ctx),
	)

	stream, err := api.NewStreamClient(api.StreamConfig{
		BaseURL:  app.baseURL,
		Sessions: app.sessions,
		AuthMode: app.streamAuth,
		Handler: func(ctx context.Context, event api.Event) {
			app.notifications.HandleStreamEvent(ctx, event)
			program.Send(watchEventMsg{
				event:        event,
				unread:       app.notifications.Unread(),
				friendEvents: app.notifications.FriendEvents(),
			})
		},
		Logf: func(format string, args ...any) {
			program.Printf(format, args...)
		},
	})
	if err != nil {
		return err
	}

	if err := stream.Connect(ctx); err != nil {
		return err
	}
	defer stream.Disconnect()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run watch view: %w", err)
	}

	return nil
}
