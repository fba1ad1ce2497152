package notifications

import (
	"fmt"
	"time"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

func renderView(notifications []domain.Notification, opts RenderOptions, s styles) string {
	unread := domain.UnreadCount(notifications)

	lines := []string{
		s.title.Render("Notifications"),
		s.header.Render(fmt.Sprintf("total: %d, unread: %d", len(notifications), unread)),
	}

	if len(notifications) == 0 {
		lines = append(lines, s.empty.Render("No notifications."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, notification := range notifications {
		lines = append(lines, renderNotification(notification, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderNotification(n domain.Notification, opts RenderOptions, s styles) string {
	marker := s.read.Render(" ")
	titleStyle := s.read
	if !n.Read {
		marker = s.badge.Render("●")
		titleStyle = s.unread
	}

	kindStyle := s.kind
	if n.Type.IsFriendEvent() {
		kindStyle = s.friendly
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		marker,
		" ",
		fmt.Sprintf("%-5d", n.ID),
		kindStyle.Render(fmt.Sprintf("%-15s", string(n.Type))),
		" ",
		titleStyle.Render(n.Title),
		" ",
		s.meta.Render(formatAge(n.CreatedAt, opts.Now)),
	)

	if n.Content == "" {
		return line
	}

	detail := s.meta.Render("        " + n.Content)
	return lipgloss.JoinVertical(lipgloss.Left, line, detail)
}

func formatAge(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}

	age := now.Sub(createdAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
