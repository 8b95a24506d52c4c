// Package bitrate estimates media sizes and keeps encoder bitrates in range.
package bitrate

// Audio bitrate bounds accepted by the lame and aac encoders, in kbps.
const (
	MinAudioKbps = 64
	MaxAudioKbps = 320
)

// EstimateBytes returns the approximate size of durationSec seconds of media
// at kbps kilobits per second, or 0 when either input is unknown.
func EstimateBytes(kbps, durationSec int) int64 {
	if kbps <= 0 || durationSec <= 0 {
		return 0
	}
	return int64(kbps) * 125 * int64(durationSec)
}

// SafeAudioKbps clamps an audio bitrate to [MinAudioKbps, MaxAudioKbps].
func SafeAudioKbps(kbps int) int {
	return min(max(kbps, MinAudioKbps), MaxAudioKbps)
}
