package downloader

import (
	"bytes"
	"testing"
	"time"

	"ytfetch/internal/model"
)

func TestProgressWriterThrottles(t *testing.T) {
	var buf bytes.Buffer
	var got []model.Transfer
	clock := time.Unix(0, 0)

	pw := newProgressWriter(&buf, 300, 500*time.Millisecond, func(tr model.Transfer) {
		got = append(got, tr)
	})
	pw.now = func() time.Time { return clock }

	// First write reports immediately, the next two fall inside the interval.
	for i := 0; i < 3; i++ {
		if _, err := pw.Write(make([]byte, 50)); err != nil {
			t.Fatal(err)
		}
		clock = clock.Add(100 * time.Millisecond)
	}
	if len(got) != 1 {
		t.Fatalf("reports = %d, want 1", len(got))
	}

	clock = clock.Add(time.Second)
	if _, err := pw.Write(make([]byte, 50)); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("reports = %d, want 2", len(got))
	}
	last := got[1]
	if last.Downloaded != 200 || last.Total != 300 {
		t.Errorf("sample = %+v", last)
	}
	if last.Speed <= 0 || last.ETA <= 0 {
		t.Errorf("speed/eta not derived: %+v", last)
	}

	pw.flush()
	if len(got) != 3 || got[2].Downloaded != 200 {
		t.Errorf("flush did not report final sample: %+v", got)
	}
	if buf.Len() != 200 {
		t.Errorf("buffer has %d bytes", buf.Len())
	}
}

func TestProgressWriterUnknownTotal(t *testing.T) {
	var got model.Transfer
	pw := newProgressWriter(&bytes.Buffer{}, 0, 0, func(tr model.Transfer) { got = tr })
	if _, err := pw.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if got.Percent() != -1 {
		t.Errorf("Percent() = %v, want -1 for unknown total", got.Percent())
	}
	if got.ETA != 0 {
		t.Errorf("ETA = %v, want 0 for unknown total", got.ETA)
	}
}
