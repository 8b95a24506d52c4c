package ui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"ytfetch/internal/errs"
	"ytfetch/internal/progress"
	"ytfetch/internal/util/format"
)

const plainBarWidth = 30

// RunPlain drives work and writes one line per feed event to w. It is used
// when stdout is not a terminal or the TUI is disabled.
func RunPlain(ctx context.Context, w io.Writer, feed *progress.Feed, work func(context.Context) error) error {
	var (
		wg      sync.WaitGroup
		workErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer feed.Close()
		workErr = work(ctx)
	}()

	p := &plainPrinter{w: w, styles: defaultStyles()}
	for {
		ev, ok := feed.Next()
		if !ok {
			break
		}
		p.print(ev)
	}
	wg.Wait()
	return workErr
}

type plainPrinter struct {
	w      io.Writer
	styles Styles
	stage  progress.Stage
}

func (p *plainPrinter) print(ev progress.Event) {
	switch {
	case ev.Update != nil:
		u := ev.Update
		if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
			// The result line carries the outcome.
			return
		}
		if u.Stage != p.stage {
			p.stage = u.Stage
			if u.Message != "" {
				fmt.Fprintln(p.w, u.Message)
			}
			if u.Percent < 0 {
				return
			}
		}
		if u.Percent >= 0 {
			fmt.Fprintln(p.w, "  "+RenderBar(*u, plainBarWidth))
		} else if u.Message != "" {
			fmt.Fprintln(p.w, u.Message)
		}
	case ev.Log != nil:
		if ev.Log.Level == progress.LevelWarn {
			fmt.Fprintln(p.w, p.styles.Warning.Render("Warning: "+ev.Log.Line))
			return
		}
		fmt.Fprintln(p.w, ev.Log.Line)
	case ev.Result != nil:
		r := ev.Result
		if r.Err != nil {
			fmt.Fprintln(p.w, p.styles.Error.Render("✗ "+errs.Describe(r.Err)))
			return
		}
		fmt.Fprintln(p.w, p.styles.Success.Render(fmt.Sprintf("✓ Saved: %s (%s)", r.OutputPath, format.HumanizeBytes(r.Bytes))))
	}
}

// RenderBar renders a text progress bar followed by the known transfer
// figures, e.g. "[█████░░░░░] 45.2% 10.0 MB/20.0 MB - 1.5 MB/s - ETA 0:04".
func RenderBar(u progress.Update, width int) string {
	pct := math.Max(0, math.Min(100, u.Percent))
	filled := int(math.Round(pct / 100 * float64(width)))
	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"

	var bytes, total int64
	var speed string
	var eta float64
	if u.Bytes != nil {
		bytes = *u.Bytes
	}
	if u.Total != nil {
		total = *u.Total
	}
	if u.Speed != nil {
		speed = *u.Speed
	}
	if u.ETA != nil {
		eta = u.ETA.Seconds()
	}
	out := fmt.Sprintf("%s %5.1f%%", bar, pct)
	if details := transferDetails(bytes, total, speed, eta); details != "" {
		out += " " + details
	}
	return out
}
