package encoder

import (
	"strconv"
	"strings"

	"ytfetch/internal/progress"
)

// ProgressState tracks ffmpeg -progress key=value output across lines.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
	TotalSize int64
}

// UpdateFromLine updates the state from a progress line and returns an
// update when a "progress=" block marker is seen.
func (ps *ProgressState) UpdateFromLine(line string, durationSec float64) (u progress.Update, ok bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Update{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	// out_time_ms is in microseconds despite its name.
	case "out_time_us", "out_time_ms":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		if val != "N/A" {
			ps.SpeedStr = val
		}
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			percent = float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100.0
			if percent > 99.9 {
				// 100% is reported by the caller once ffmpeg exits cleanly.
				percent = 99.9
			}
			if percent < 0 {
				percent = 0
			}
		}

		var speedPtr *string
		if ps.SpeedStr != "" {
			s := ps.SpeedStr
			speedPtr = &s
		}

		var bytesPtr *int64
		if ps.TotalSize > 0 {
			b := ps.TotalSize
			bytesPtr = &b
		}

		return progress.Update{
			Stage:   progress.StageConverting,
			Percent: percent,
			Speed:   speedPtr,
			Bytes:   bytesPtr,
			Message: "Converting",
		}, true
	}

	return progress.Update{}, false
}
