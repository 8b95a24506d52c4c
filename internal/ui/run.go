// Package ui renders session progress, either as a bubbletea TUI or as
// plain text lines.
package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ytfetch/internal/progress"
)

// Run drives work under the TUI. work must publish into feed; Run closes the
// feed when work returns. Pressing q or ctrl+c cancels work's context.
func Run(ctx context.Context, title string, feed *progress.Feed, work func(context.Context) error) error {
	return run(ctx, title, feed, work, nil)
}

// run is Run with program options. started, when set, receives the program
// before it runs.
// The program quits when the feed closes, never on ctx.
func run(ctx context.Context, title string, feed *progress.Feed, work func(context.Context) error,
	started func(*tea.Program), opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(NewModel(title, cancel), opts...)
	if started != nil {
		started(prog)
	}

	var (
		wg      sync.WaitGroup
		workErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer feed.Close()
		workErr = work(ctx)
	}()
	go func() {
		defer wg.Done()
		pump(feed, prog.Send)
	}()

	_, runErr := prog.Run()
	// If the program died first, stop the session and drain the feed.
	cancel()
	wg.Wait()

	if workErr != nil {
		return workErr
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}

// pump forwards feed events to send until the feed is closed and drained.
func pump(feed *progress.Feed, send func(tea.Msg)) {
	for {
		ev, ok := feed.Next()
		if !ok {
			send(feedClosedMsg{})
			return
		}
		send(eventMsg{Ev: ev})
	}
}
