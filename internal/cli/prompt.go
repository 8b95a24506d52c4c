package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ytfetch/internal/errs"
	"ytfetch/internal/model"
	"ytfetch/internal/ui"
	"ytfetch/internal/util/format"
)

// Prompter asks the interactive-mode questions.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	styles ui.Styles
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		styles: ui.DefaultStyles(),
	}
}

type line struct {
	text string
	err  error
}

// readLine returns one trimmed line. Each call reads on its own goroutine so
// ctx can interrupt a blocked terminal read.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	ch := make(chan line, 1)
	go func() {
		s, err := p.in.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		ch <- line{text: strings.TrimSpace(s), err: err}
	}()
	select {
	case l := <-ch:
		return l.text, l.err
	case <-ctx.Done():
		return "", errs.New(errs.KindCancelled, "", ctx.Err())
	}
}

func (p *Prompter) ask(ctx context.Context, question string) (string, error) {
	fmt.Fprint(p.out, p.styles.Header.Render(question)+" ")
	return p.readLine(ctx)
}

// AskURL prompts until a non-empty answer is given.
func (p *Prompter) AskURL(ctx context.Context) (string, error) {
	for {
		s, err := p.ask(ctx, "Enter YouTube URL:")
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
}

// AskFormat shows the format menu and prompts until a valid choice is given.
func (p *Prompter) AskFormat(ctx context.Context) (model.FormatMode, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.Header.Render("Select format:"))
	for i, m := range model.Modes {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, m.Description())
	}
	for {
		s, err := p.ask(ctx, fmt.Sprintf("Choice [1-%d]:", len(model.Modes)))
		if err != nil {
			return "", err
		}
		mode, err := model.ParseFormatMode(s)
		if err == nil {
			return mode, nil
		}
		fmt.Fprintln(p.out, p.styles.Error.Render("Invalid choice, try again."))
	}
}

// Confirm asks a y/n question until it gets y, yes, n or no. EOF is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		s, err := p.ask(ctx, question+" (y/n)")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(s) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, p.styles.Warning.Render("Please enter 'y' or 'n'."))
	}
}

// ShowInfo prints the fetched title and duration.
func (p *Prompter) ShowInfo(info model.VideoInfo) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Video:   "), p.styles.Info.Render(info.Title))
	if info.Uploader != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Channel: "), p.styles.Info.Render(info.Uploader))
	}
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Duration:"), p.styles.Info.Render(format.Duration(info.DurationSeconds)))
}

// Status prints a neutral progress line.
func (p *Prompter) Status(msg string) {
	fmt.Fprintln(p.out, p.styles.Faint.Render(msg))
}

// ShowError prints err with its cause category.
func (p *Prompter) ShowError(err error) {
	fmt.Fprintln(p.out, p.styles.Error.Render("✗ "+errs.Describe(err)))
}
