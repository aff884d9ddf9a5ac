// Package tui is the terminal playback controls view.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the controls while play runs. It returns once playback has fully stopped,
// with play's error if there was one.
func Run(ctx context.Context, player Player, play func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newBubble(player), tea.WithAltScreen(), tea.WithReportFocus())

	result := make(chan error, 1)
	go func() {
		err := play(ctx)
		result <- err
		program.Send(playbackDoneMsg{err: err})
	}()

	_, uiErr := program.Run()

	// A forced quit leaves playback running; stop it and wait for teardown.
	cancel()
	err := <-result
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	return errors.Join(err, uiErr)
}
