package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ytfetch/internal/errs"
	"ytfetch/internal/progress"
)

func TestRunCtrlCCancelsAndQuits(t *testing.T) {
	var out bytes.Buffer
	feed := progress.NewFeed()

	work := func(ctx context.Context) error {
		feed.Update(progress.Update{Stage: progress.StageDownloading, Percent: 10, Message: "Downloading"})
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			return errors.New("work was not cancelled")
		}
		err := errs.New(errs.KindCancelled, errs.StageDownload, ctx.Err())
		feed.Result(progress.Result{Err: err})
		return err
	}
	started := func(p *tea.Program) {
		go p.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}

	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), "x", feed, work, started,
			tea.WithInput(nil), tea.WithOutput(&out))
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after ctrl+c")
	}
	if errs.KindOf(err) != errs.KindCancelled {
		t.Fatalf("err = %v, want cancelled", err)
	}
	if !strings.Contains(out.String(), "download: cancelled") {
		t.Errorf("cancelled result not rendered:\n%s", out.String())
	}
}

func TestRunQuitsWhenWorkFinishes(t *testing.T) {
	var out bytes.Buffer
	feed := progress.NewFeed()

	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), "x", feed, func(context.Context) error {
			feed.Result(progress.Result{OutputPath: "out/mp4/a.mp4", Bytes: 2048})
			return nil
		}, nil, tea.WithInput(nil), tea.WithOutput(&out))
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after work finished")
	}
	if !strings.Contains(out.String(), "Saved: out/mp4/a.mp4") {
		t.Errorf("result not rendered:\n%s", out.String())
	}
}
