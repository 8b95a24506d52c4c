package downloader

import (
	"io"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"ytfetch/internal/model"
)

// transferFromYTDLP converts a go-ytdlp progress sample. Speed is averaged
// since the stream started.
func transferFromYTDLP(u ytdlp.ProgressUpdate) model.Transfer {
	t := model.Transfer{
		Downloaded: int64(u.DownloadedBytes),
		Total:      int64(u.TotalBytes),
	}
	if !u.Started.IsZero() {
		if elapsed := time.Since(u.Started).Seconds(); elapsed > 0 {
			t.Speed = float64(u.DownloadedBytes) / elapsed
		}
	}
	if eta := u.ETA(); eta > 0 {
		t.ETA = eta
	}
	return t
}

// progressWriter counts bytes copied through it and reports at most once per
// interval. The last sample is always reported by flush.
type progressWriter struct {
	w        io.Writer
	total    int64
	interval time.Duration
	report   func(model.Transfer)
	now      func() time.Time

	mu      sync.Mutex
	written int64
	started time.Time
	last    time.Time
}

func newProgressWriter(w io.Writer, total int64, interval time.Duration, report func(model.Transfer)) *progressWriter {
	return &progressWriter{w: w, total: total, interval: interval, report: report, now: time.Now}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)

	p.mu.Lock()
	now := p.now()
	if p.started.IsZero() {
		p.started = now
	}
	p.written += int64(n)
	due := p.report != nil && now.Sub(p.last) >= p.interval
	var t model.Transfer
	if due {
		p.last = now
		t = p.sampleLocked(now)
	}
	p.mu.Unlock()

	if due {
		p.report(t)
	}
	return n, err
}

func (p *progressWriter) flush() {
	if p.report == nil {
		return
	}
	p.mu.Lock()
	t := p.sampleLocked(p.now())
	p.mu.Unlock()
	p.report(t)
}

func (p *progressWriter) sampleLocked(now time.Time) model.Transfer {
	t := model.Transfer{Downloaded: p.written, Total: p.total}
	if elapsed := now.Sub(p.started).Seconds(); elapsed > 0 {
		t.Speed = float64(p.written) / elapsed
		if p.total > p.written && t.Speed > 0 {
			t.ETA = time.Duration(float64(p.total-p.written) / t.Speed * float64(time.Second))
		}
	}
	return t
}
