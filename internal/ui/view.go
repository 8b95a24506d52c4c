package ui

import (
	"fmt"
	"strings"

	"ytfetch/internal/errs"
	"ytfetch/internal/progress"
	"ytfetch/internal/util/format"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("ytfetch")
	if m.title != "" {
		title += " " + m.styles.Header.Render(truncate(m.title, 60))
	}
	hint := "q: cancel"
	if m.state.done {
		hint = "q: quit"
	}
	return title + "\n" + m.styles.Subtitle.Render(hint)
}

func (m Model) stageStyle(stage progress.Stage) func(...string) string {
	switch stage {
	case progress.StageValidating, progress.StageMetadata:
		return m.styles.StageMeta.Render
	case progress.StageDownloading:
		return m.styles.StageDL.Render
	case progress.StageConverting:
		return m.styles.StageConv.Render
	case progress.StageRetrying:
		return m.styles.Warning.Render
	case progress.StageCompleted:
		return m.styles.Success.Render
	case progress.StageError:
		return m.styles.Error.Render
	}
	return m.styles.Info.Render
}

func (m Model) viewSession() string {
	s := m.state
	stage := m.stageStyle(s.stage)(string(s.stage))

	var bar string
	switch {
	case s.percent >= 0 && s.percent <= 100:
		bar = fmt.Sprintf("%s %5.1f%%", s.bar.ViewAs(s.percent/100.0), s.percent)
	case s.done && s.err == nil:
		bar = m.styles.Success.Render("✓ done")
	case s.err != nil:
		bar = m.styles.Error.Render("✗ error")
	default:
		bar = m.styles.Spinner.Render(s.spinner.View()) + " " + m.styles.Faint.Render("working")
	}

	info := s.status
	if details := transferDetails(s.bytes, s.total, s.speed, s.eta.Seconds()); details != "" && !s.done {
		info += "  " + m.styles.Faint.Render(details)
	}
	if s.err != nil {
		info = m.styles.Error.Render(errs.Describe(s.err))
	}
	return m.styles.Box.Render(stage + "\n" + bar + "\n" + m.styles.Info.Render(info))
}

func (m Model) viewSummary() string {
	var b strings.Builder
	for _, w := range m.state.warnings {
		b.WriteString(m.styles.Warning.Render("! " + w))
		b.WriteString("\n")
	}
	if m.state.done && m.state.err == nil && m.state.outputPath != "" {
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("✓ Saved: %s (%s)",
			m.state.outputPath, format.HumanizeBytes(m.state.bytes))))
		b.WriteString("\n")
	}
	return b.String()
}

// transferDetails renders "size - speed - ETA" with unknown parts omitted.
func transferDetails(bytes, total int64, speed string, etaSec float64) string {
	var parts []string
	switch {
	case total > 0:
		parts = append(parts, format.HumanizeBytes(bytes)+"/"+format.HumanizeBytes(total))
	case bytes > 0:
		parts = append(parts, format.HumanizeBytes(bytes))
	}
	if speed != "" {
		parts = append(parts, speed)
	}
	if etaSec >= 1 {
		parts = append(parts, "ETA "+format.Duration(int(etaSec)))
	}
	return strings.Join(parts, " - ")
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
