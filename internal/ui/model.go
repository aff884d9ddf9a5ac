// Package ui renders short-lived notifications at the bottom of a view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-cli/marquee/style"
)

const lifetime = 3 * time.Second

// Model holds the notification currently shown.
type Model struct {
	notification string
}

// NotificationMsg replaces the current notification.
type NotificationMsg string

// ClearNotificationMsg resets the notification.
type ClearNotificationMsg struct{}

// Notify returns a command that shows text for a few seconds.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg(text)
	}
}

func clearLater() tea.Cmd {
	return tea.Tick(lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notification = string(msg)
		return clearLater()
	case ClearNotificationMsg:
		m.notification = ""
	}
	return nil
}

// Current returns the visible notification, if any.
func (m *Model) Current() string {
	return m.notification
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
