package format

import "strconv"

var byteUnits = [...]string{"KB", "MB", "GB", "TB"}

// HumanizeBytes renders a byte count in binary units, e.g. "1.5 MB".
// Negative counts render as "0 B".
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	if b < 1024 {
		return strconv.FormatInt(b, 10) + " B"
	}
	v := float64(b) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + byteUnits[unit]
}

// Rate renders a bytes-per-second figure, or "" when unknown.
func Rate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return ""
	}
	return HumanizeBytes(int64(bytesPerSec)) + "/s"
}
