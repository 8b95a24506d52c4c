package encoder

import (
	"testing"

	"ytfetch/internal/progress"
)

func TestProgressState_UpdateFromLine(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string // Multiple lines to process in sequence
		durationSec float64
		wantOk      bool
		wantPercent float64
		wantSpeed   string
	}{
		{
			name: "half way",
			lines: []string{
				"out_time_us=30000000", // 30 seconds
				"speed=1.5x",
				"total_size=10485760",
				"progress=continue",
			},
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 50.0,
			wantSpeed:   "1.5x",
		},
		{
			name: "legacy out_time_ms key",
			lines: []string{
				"out_time_ms=15000000",
				"progress=continue",
			},
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 25.0,
		},
		{
			name:        "unknown duration",
			lines:       []string{"out_time_us=1000", "speed=N/A", "progress=continue"},
			durationSec: 0,
			wantOk:      true,
			wantPercent: -1,
		},
		{
			name:        "end marker capped below 100",
			lines:       []string{"out_time_us=61000000", "progress=end"},
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 99.9,
		},
		{
			name:        "no progress marker",
			lines:       []string{"out_time_us=1000", "bitrate=128.0kbits/s"},
			durationSec: 60.0,
			wantOk:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ps ProgressState
			var last progress.Update
			var ok bool
			for _, line := range tt.lines {
				if u, got := ps.UpdateFromLine(line, tt.durationSec); got {
					last, ok = u, true
				}
			}
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if last.Stage != progress.StageConverting {
				t.Errorf("Stage = %q", last.Stage)
			}
			if last.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, want %v", last.Percent, tt.wantPercent)
			}
			if tt.wantSpeed != "" && (last.Speed == nil || *last.Speed != tt.wantSpeed) {
				t.Errorf("Speed = %v, want %q", last.Speed, tt.wantSpeed)
			}
			if tt.wantSpeed == "" && last.Speed != nil && *last.Speed == "N/A" {
				t.Errorf("N/A speed should be dropped")
			}
		})
	}
}

func TestProgressState_IgnoresGarbage(t *testing.T) {
	var ps ProgressState
	for _, line := range []string{"", "frame", "out_time_us=abc"} {
		if _, ok := ps.UpdateFromLine(line, 10); ok {
			t.Errorf("UpdateFromLine(%q) reported progress", line)
		}
	}
	if ps.OutTimeUs != 0 {
		t.Errorf("OutTimeUs = %d", ps.OutTimeUs)
	}
}
