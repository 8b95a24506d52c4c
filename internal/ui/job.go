package ui

import (
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"ytfetch/internal/progress"
)

// sessionState is what the views know about the running session.
type sessionState struct {
	stage  progress.Stage
	status string
	err    error
	done   bool

	outputPath string
	bytes      int64
	total      int64
	speed      string
	eta        time.Duration
	percent    float64 // -1 means unknown

	warnings []string

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newSessionState(styles Styles) sessionState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return sessionState{
		stage:   progress.StageValidating,
		status:  "Starting",
		percent: -1,
		spinner: sp,
		bar:     bar,
	}
}

// apply folds one feed event into the state.
func (s *sessionState) apply(ev progress.Event) {
	switch {
	case ev.Update != nil:
		u := ev.Update
		if u.Stage != s.stage {
			s.bytes, s.total, s.speed, s.eta = 0, 0, "", 0
		}
		s.stage = u.Stage
		s.percent = u.Percent
		if u.Message != "" {
			s.status = u.Message
		}
		if u.Bytes != nil {
			s.bytes = *u.Bytes
		}
		if u.Total != nil {
			s.total = *u.Total
		}
		if u.Speed != nil {
			s.speed = *u.Speed
		}
		if u.ETA != nil {
			s.eta = *u.ETA
		}
	case ev.Log != nil:
		if ev.Log.Level == progress.LevelWarn {
			s.warnings = append(s.warnings, ev.Log.Line)
		}
	case ev.Result != nil:
		r := ev.Result
		s.done = true
		s.err = r.Err
		if r.Err == nil {
			s.stage = progress.StageCompleted
			s.percent = 100
			s.outputPath = r.OutputPath
			s.bytes = r.Bytes
		} else {
			s.stage = progress.StageError
			s.percent = -1
		}
	}
}
