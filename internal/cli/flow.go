// Package cli holds the two front-ends over the download pipeline: argument
// mode and interactive mode. Both run through Flow.
package cli

import (
	"context"
	"errors"

	"ytfetch/internal/model"
	"ytfetch/internal/pipeline"
)

// ErrDeclined is returned when the user answers no at the confirmation prompt.
var ErrDeclined = errors.New("download cancelled")

// ReportedError marks a failure the user has already been shown.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// Renderer shows progress while work runs and returns work's error.
type Renderer func(ctx context.Context, title string, work func(context.Context) error) error

// Flow runs one session from URL to final status.
type Flow struct {
	Service *pipeline.Service
	// Prompter is nil when stdin cannot be prompted; a missing URL or format
	// is then a usage error.
	Prompter  *Prompter
	Render    Renderer
	AssumeYes bool
}

// Input is what the command line supplied. Empty URL selects interactive
// mode; empty Mode prompts for the format.
type Input struct {
	URL       string
	Mode      model.FormatMode
	OutputDir string
	Auth      model.AuthCredential
}

// Interactive reports whether in needs the prompts.
func (in Input) Interactive() bool {
	return in.URL == ""
}

// Run drives the session. The returned session is nil only for usage errors.
func (f *Flow) Run(ctx context.Context, in Input) (*pipeline.Session, error) {
	if f.Prompter == nil && (in.Interactive() || in.Mode == "") {
		return nil, errors.New("--url and --format are required when stdin is not a terminal")
	}

	sess := f.Service.NewSession(model.DownloadRequest{
		OutputDir: in.OutputDir,
		Auth:      in.Auth,
	})
	if err := f.submit(ctx, sess, in); err != nil {
		return sess, err
	}

	f.status("Fetching video info...")
	if err := f.Service.FetchInfo(ctx, sess); err != nil {
		return sess, f.report(err)
	}
	if f.Prompter != nil {
		f.Prompter.ShowInfo(*sess.Info)
	}

	mode := in.Mode
	if mode == "" {
		var err error
		if mode, err = f.Prompter.AskFormat(ctx); err != nil {
			return sess, err
		}
	}

	if in.Interactive() && !f.AssumeYes {
		ok, err := f.Prompter.Confirm(ctx, "Proceed with download?")
		if err != nil {
			return sess, err
		}
		if !ok {
			return sess, ErrDeclined
		}
	}

	err := f.Render(ctx, sess.Info.Title, func(ctx context.Context) error {
		return f.Service.Download(ctx, sess, mode)
	})
	if err != nil {
		if sess.Done() {
			return sess, &ReportedError{Err: err}
		}
		return sess, err
	}
	return sess, nil
}

// submit validates the URL. Interactive mode re-prompts on invalid input;
// argument mode fails straight away.
func (f *Flow) submit(ctx context.Context, sess *pipeline.Session, in Input) error {
	if !in.Interactive() {
		if err := f.Service.Submit(sess, in.URL); err != nil {
			return f.report(err)
		}
		return nil
	}
	for {
		raw, err := f.Prompter.AskURL(ctx)
		if err != nil {
			return err
		}
		err = f.Service.Submit(sess, raw)
		if err == nil {
			return nil
		}
		f.Prompter.ShowError(err)
	}
}

func (f *Flow) status(msg string) {
	if f.Prompter != nil {
		f.Prompter.Status(msg)
	}
}

// report shows err when there is a terminal to show it on.
func (f *Flow) report(err error) error {
	if f.Prompter == nil {
		return err
	}
	f.Prompter.ShowError(err)
	return &ReportedError{Err: err}
}
